package persistence

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tileworld/config"
	"github.com/lixenwraith/tileworld/world"
)

var (
	ErrSlotNotFound = errors.New("persistence: slot not found")
	ErrInvalidSlot  = errors.New("persistence: invalid slot name")
	ErrNoStorage    = errors.New("persistence: storage disabled")
)

// Storage saves and loads world snapshots under slot names
type Storage interface {
	Save(ctx context.Context, slot string, s world.Snapshot) error
	Load(ctx context.Context, slot string) (world.Snapshot, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, slot string) error
	Close() error
}

// Open creates the store selected by cfg.Driver
func Open(ctx context.Context, cfg config.StorageConfig, logger *logrus.Logger) (Storage, error) {
	switch cfg.Driver {
	case config.StorageFile:
		return NewFileStore(cfg.Path, logger)
	case config.StoragePostgres:
		return NewPostgresStore(ctx, cfg.DSN, logger)
	case config.StorageNone, "":
		return nil, ErrNoStorage
	}
	return nil, errors.Wrapf(config.ErrInvalidConfig, "storage driver %q", cfg.Driver)
}

// SaveWorld exports w into slot
func SaveWorld(ctx context.Context, st Storage, slot string, w *world.World) error {
	return st.Save(ctx, slot, w.Export())
}

// LoadWorld imports slot into w; w is unchanged on any error
func LoadWorld(ctx context.Context, st Storage, slot string, w *world.World) error {
	s, err := st.Load(ctx, slot)
	if err != nil {
		return err
	}
	return errors.Wrapf(w.Import(s), "import slot %s", slot)
}

// validSlot accepts short names made of letters, digits, dash and underscore
func validSlot(slot string) error {
	if slot == "" || len(slot) > 64 {
		return errors.Wrapf(ErrInvalidSlot, "%q", slot)
	}
	if strings.IndexFunc(slot, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_')
	}) >= 0 {
		return errors.Wrapf(ErrInvalidSlot, "%q", slot)
	}
	return nil
}
