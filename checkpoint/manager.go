package checkpoint

import (
	"fmt"

	"go.uber.org/zap"
)

// Stater is anything that can snapshot itself, in practice a stream
// iterator. Defined here so the manager does not depend on the stream
// package.
type Stater interface {
	State() (*State, error)
}

// Manager couples a backend with the blob codec and logs save/load traffic.
type Manager struct {
	backend Backend
	log     *zap.Logger
}

// NewManager returns a manager writing through backend. A nil logger
// disables logging.
func NewManager(backend Backend, log *zap.Logger) (*Manager, error) {
	if backend == nil {
		return nil, fmt.Errorf("checkpoint backend must not be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{backend: backend, log: log}, nil
}

// Save snapshots it and stores the encoded blob under key.
func (m *Manager) Save(key string, it Stater) error {
	st, err := it.State()
	if err != nil {
		return fmt.Errorf("snapshot iterator: %w", err)
	}
	blob, err := Encode(st)
	if err != nil {
		return err
	}
	if err := m.backend.Write(key, blob); err != nil {
		return err
	}
	m.log.Info("checkpoint saved",
		zap.String("key", key),
		zap.Int("bytes", len(blob)))
	return nil
}

// Load reads and decodes the state stored under key. The caller restores it
// into a fresh iterator with stream.Restore.
func (m *Manager) Load(key string) (*State, error) {
	blob, err := m.backend.Read(key)
	if err != nil {
		return nil, err
	}
	st, err := Decode(blob)
	if err != nil {
		return nil, err
	}
	m.log.Info("checkpoint loaded",
		zap.String("key", key),
		zap.Int("bytes", len(blob)))
	return st, nil
}
