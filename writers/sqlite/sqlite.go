package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

const stateTable = "_olake_state"

// SQLite destination keeps one table per stream keyed by the record's key
// properties. Rows and bookmarks are committed together at every checkpoint.
type SQLite struct {
	config *Config
	stream types.StreamInterface
	db     *sql.DB
	tx     *sql.Tx
	upsert *sql.Stmt
	table  string
}

func (s *SQLite) GetConfigRef() destination.Config {
	s.config = &Config{}
	return s.config
}

func (s *SQLite) Spec() any {
	return Config{}
}

func (s *SQLite) Type() string {
	return string(types.SQLite)
}

func (s *SQLite) Check(ctx context.Context) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}

func (s *SQLite) Setup(stream types.StreamInterface, _ *destination.Options) error {
	ctx := context.Background()
	db, err := s.open()
	if err != nil {
		return err
	}

	s.stream = stream
	s.table = quoteIdentifier(s.config.TablePrefix + stream.Name())

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			%s TEXT PRIMARY KEY,
			%s TEXT NOT NULL,
			data TEXT NOT NULL
		)`, s.table, constants.OlakeID, constants.OlakeTimestamp),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			state TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`, stateTable),
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			db.Close()
			return fmt.Errorf("failed to create tables for stream %s: %s", stream.ID(), err)
		}
	}

	s.db = db
	if err := s.begin(ctx); err != nil {
		s.db = nil
		db.Close()
		return err
	}
	return nil
}

func (s *SQLite) Write(ctx context.Context, record types.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %s", err)
	}

	olakeID := record.KeyHash(s.stream.KeyProperties()...)
	if olakeID == "" {
		olakeID = utils.ULID()
	}

	_, err = s.upsert.ExecContext(ctx, olakeID, time.Now().UTC().Format(time.RFC3339Nano), string(data))
	return err
}

// WriteState stores the bookmarks and commits them with the rows written so far
func (s *SQLite) WriteState(ctx context.Context, state *types.State) error {
	snapshot, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %s", err)
	}

	_, err = s.tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (id, state, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`, stateTable),
		string(snapshot), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store state: %s", err)
	}

	if err := s.commit(); err != nil {
		return err
	}
	return s.begin(ctx)
}

func (s *SQLite) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	return utils.ErrExecSequential(s.commit, s.db.Close)
}

func (s *SQLite) open() (*sql.DB, error) {
	if dir := filepath.Dir(s.config.Path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory[%s]: %s", dir, err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.config.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database[%s]: %s", s.config.Path, err)
	}
	// one writer per stream; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)
	return db, nil
}

func (s *SQLite) begin(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %s", err)
	}

	upsert, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s, %s, data) VALUES (?, ?, ?)
		ON CONFLICT(%s) DO UPDATE SET %s = excluded.%s, data = excluded.data`,
		s.table, constants.OlakeID, constants.OlakeTimestamp,
		constants.OlakeID, constants.OlakeTimestamp, constants.OlakeTimestamp))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare upsert: %s", err)
	}

	s.tx = tx
	s.upsert = upsert
	return nil
}

func (s *SQLite) commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	_ = s.upsert.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %s", err)
	}
	return nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func init() {
	destination.RegisteredWriters[types.SQLite] = func() destination.Writer {
		return new(SQLite)
	}
}
