package persistence

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tileworld/log"
	"github.com/lixenwraith/tileworld/world"
)

// FileExt is appended to slot names on disk
const FileExt = ".twld"

// FileStore keeps one snapshot file per slot in a directory
type FileStore struct {
	dir   string
	mutex sync.Mutex
	log   *logrus.Entry
}

// NewFileStore creates dir when missing
func NewFileStore(dir string, logger *logrus.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create store dir %s", dir)
	}
	return &FileStore{dir: dir, log: log.Component(logger, "storage")}, nil
}

func (st *FileStore) path(slot string) string {
	return filepath.Join(st.dir, slot+FileExt)
}

// Save replaces slot atomically through a temp file and rename
func (st *FileStore) Save(_ context.Context, slot string, s world.Snapshot) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	data, err := Marshal(s)
	if err != nil {
		return err
	}

	st.mutex.Lock()
	defer st.mutex.Unlock()

	tmp, err := os.CreateTemp(st.dir, slot+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write slot %s", slot)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close slot %s", slot)
	}
	if err := os.Rename(tmp.Name(), st.path(slot)); err != nil {
		return errors.Wrapf(err, "commit slot %s", slot)
	}
	st.log.WithFields(logrus.Fields{"slot": slot, "bytes": len(data)}).Debug("snapshot saved")
	return nil
}

// Load reads and decodes slot
func (st *FileStore) Load(_ context.Context, slot string) (world.Snapshot, error) {
	if err := validSlot(slot); err != nil {
		return world.Snapshot{}, err
	}
	st.mutex.Lock()
	data, err := os.ReadFile(st.path(slot))
	st.mutex.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return world.Snapshot{}, errors.Wrap(ErrSlotNotFound, slot)
	}
	if err != nil {
		return world.Snapshot{}, errors.Wrapf(err, "read slot %s", slot)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return world.Snapshot{}, errors.Wrapf(err, "slot %s", slot)
	}
	return s, nil
}

// List returns the saved slot names in sorted order
func (st *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, errors.Wrap(err, "list store dir")
	}
	var slots []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, FileExt) {
			continue
		}
		slots = append(slots, strings.TrimSuffix(name, FileExt))
	}
	sort.Strings(slots)
	return slots, nil
}

// Delete removes slot; a missing slot is reported as ErrSlotNotFound
func (st *FileStore) Delete(_ context.Context, slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	st.mutex.Lock()
	defer st.mutex.Unlock()
	err := os.Remove(st.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(ErrSlotNotFound, slot)
	}
	return errors.Wrapf(err, "delete slot %s", slot)
}

// Close is a no-op
func (st *FileStore) Close() error { return nil }
