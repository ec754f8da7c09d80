// Package sqlite implements the SQLite storage backend for promptkit.
// The Backend owns the database handle and exposes the data access API over
// projects, prompts, and templates (types.Store).
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// DatabaseFile is the name of the SQLite file created under Config.DataDir.
const DatabaseFile = "prompts.db"

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on SQLite. Writes are serialized by mu;
// reads share it.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// clock supplies timestamps. Tests replace it to get strictly
	// increasing times.
	clock func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock overrides the time source used for created/updated timestamps.
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) {
		b.clock = clock
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{clock: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens the database described by config, creates the schema if it
// is absent, and seeds the default templates. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dsn, err := dataSourceName(config)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if config.InMemory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return fmt.Errorf("init schema: %w", err)
	}

	if err := seedDefaultTemplates(db, b.now()); err != nil {
		db.Close()
		return fmt.Errorf("seed default templates: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// Path returns the database file path, or "" for in-memory databases.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.config.InMemory {
		return ""
	}
	return filepath.Join(dataDirOrCWD(b.config.DataDir), DatabaseFile)
}

// dataSourceName builds the modernc.org/sqlite DSN. Pragmas go in the DSN
// so that every pooled connection gets them; foreign_keys in particular is
// per-connection.
func dataSourceName(config types.Config) (string, error) {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	if config.InMemory {
		return "file::memory:?" + pragmas, nil
	}

	dataDir := dataDirOrCWD(config.DataDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, DatabaseFile)
	return "file:" + path + "?" + pragmas + "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", nil
}

func dataDirOrCWD(dataDir string) string {
	if dataDir == "" {
		return "."
	}
	return dataDir
}

// now returns the clock time truncated to the millisecond precision stored
// in the database.
func (b *Backend) now() types.Timestamp {
	return types.NewTimestamp(b.clock())
}

// checkAttached must be called with mu held.
func (b *Backend) checkAttached() error {
	if !b.attached {
		return types.ErrStoreDetached
	}
	return nil
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
