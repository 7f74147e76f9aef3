package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig holds configuration for a BadgerDB-backed store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log lines.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// Badger is a Store persisted in a BadgerDB directory.
// It is safe for concurrent use.
type Badger struct {
	db       *badger.DB
	inMemory bool
}

var _ Store = (*Badger)(nil)

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
// BadgerDB is chatty at info level, so info is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens a BadgerDB store with the given configuration.
// Creates the directory if it doesn't exist. Caller must call Close.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0700); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	return &Badger{db: db, inMemory: cfg.InMemory}, nil
}

// OpenInMemory opens a non-persistent BadgerDB store for tests.
func OpenInMemory() (*Badger, error) {
	return OpenBadger(BadgerConfig{InMemory: true})
}

// Get implements Store.
func (b *Badger) Get(key string, v any) (bool, error) {
	var raw []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &Error{Op: "get", Key: key, Err: err}
	}
	if err := decode("get", key, raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements Store.
func (b *Badger) Set(key string, v any) error {
	data, err := encode("set", key, v)
	if err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Durable implements Store. In-memory databases are not durable.
func (b *Badger) Durable() bool { return !b.inMemory }

// Close implements Store.
func (b *Badger) Close() error {
	return b.db.Close()
}
