package persistence

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tileworld/log"
	"github.com/lixenwraith/tileworld/world"
)

// PostgresStore keeps encoded snapshots as bytea rows keyed by slot
type PostgresStore struct {
	db  *sql.DB
	log *logrus.Entry
}

// NewPostgresStore opens dsn, checks the connection and creates the table when missing
func NewPostgresStore(ctx context.Context, dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	st := &PostgresStore{db: db, log: log.Component(logger, "storage")}
	if err := st.initSchema(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize schema")
	}
	return st, nil
}

func (st *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS world_snapshots (
		slot TEXT PRIMARY KEY,
		format SMALLINT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		data BYTEA NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	_, err := st.db.ExecContext(ctx, schema)
	return err
}

// Save upserts slot
func (st *PostgresStore) Save(ctx context.Context, slot string, s world.Snapshot) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	data, err := Marshal(s)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO world_snapshots (slot, format, width, height, data)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (slot)
	DO UPDATE SET
		format = $2, width = $3, height = $4, data = $5,
		updated_at = NOW()
	`
	if _, err := st.db.ExecContext(ctx, query, slot, int(FormatVersion), s.Cols, s.Rows, data); err != nil {
		return errors.Wrapf(err, "save slot %s", slot)
	}
	st.log.WithFields(logrus.Fields{"slot": slot, "bytes": len(data)}).Debug("snapshot saved")
	return nil
}

// Load fetches and decodes slot
func (st *PostgresStore) Load(ctx context.Context, slot string) (world.Snapshot, error) {
	if err := validSlot(slot); err != nil {
		return world.Snapshot{}, err
	}
	var data []byte
	err := st.db.QueryRowContext(ctx, `SELECT data FROM world_snapshots WHERE slot = $1`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return world.Snapshot{}, errors.Wrap(ErrSlotNotFound, slot)
	}
	if err != nil {
		return world.Snapshot{}, errors.Wrapf(err, "load slot %s", slot)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return world.Snapshot{}, errors.Wrapf(err, "slot %s", slot)
	}
	return s, nil
}

// List returns slot names in sorted order
func (st *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT slot FROM world_snapshots ORDER BY slot`)
	if err != nil {
		return nil, errors.Wrap(err, "list slots")
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, errors.Wrap(err, "scan slot")
		}
		slots = append(slots, slot)
	}
	return slots, errors.Wrap(rows.Err(), "list slots")
}

// Delete removes slot
func (st *PostgresStore) Delete(ctx context.Context, slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	res, err := st.db.ExecContext(ctx, `DELETE FROM world_snapshots WHERE slot = $1`, slot)
	if err != nil {
		return errors.Wrapf(err, "delete slot %s", slot)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(ErrSlotNotFound, slot)
	}
	return nil
}

// Close closes the connection pool
func (st *PostgresStore) Close() error {
	return st.db.Close()
}
