package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS actions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	action     TEXT    NOT NULL,
	user_name  TEXT    NOT NULL DEFAULT '',
	room_id    TEXT    NOT NULL DEFAULT '',
	details    TEXT,
	ip         TEXT    NOT NULL DEFAULT '',
	user_agent TEXT    NOT NULL DEFAULT '',
	ts         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS actions_ts ON actions (ts);
CREATE INDEX IF NOT EXISTS actions_room ON actions (room_id, ts);
`

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

// SQLiteStore keeps the action log in a local SQLite file.
type SQLiteStore struct {
	pool *sqlitex.Pool
	path string
}

func OpenSQLite(path string, poolSize int) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("audit sqlite: path is required")
	}
	if poolSize <= 0 {
		poolSize = 4
	}
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("audit sqlite: opening %s: %w", path, err)
	}
	log.Info().Str("module", "audit").Str("path", path).Int("pool_size", poolSize).Msg("sqlite store opened")
	return &SQLiteStore{pool: pool, path: path}, nil
}

func prepareConn(conn *sqlite.Conn) error {
	for _, pragma := range sqlitePragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, sqliteSchema, nil); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, e Entry) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("audit sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	var details any
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("audit sqlite: encoding details: %w", err)
		}
		details = string(b)
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO actions (action, user_name, room_id, details, ip, user_agent, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{string(e.Action), e.UserName, e.RoomID, details, e.IP, e.UserAgent, e.Timestamp.UnixMilli()},
		})
	if err != nil {
		return fmt.Errorf("audit sqlite: insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]Entry, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	query, args := sqliteQuery(f)
	out := make([]Entry, 0)
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			e := Entry{
				ID:        strconv.FormatInt(stmt.ColumnInt64(0), 10),
				Action:    Action(stmt.ColumnText(1)),
				UserName:  stmt.ColumnText(2),
				RoomID:    stmt.ColumnText(3),
				IP:        stmt.ColumnText(5),
				UserAgent: stmt.ColumnText(6),
				Timestamp: time.UnixMilli(stmt.ColumnInt64(7)).UTC(),
			}
			if raw := stmt.ColumnText(4); raw != "" {
				if err := json.Unmarshal([]byte(raw), &e.Details); err != nil {
					return fmt.Errorf("decoding details of %s: %w", e.ID, err)
				}
			}
			out = append(out, e)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("audit sqlite: query: %w", err)
	}
	return out, nil
}

func sqliteQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(f.Action))
	}
	if f.RoomID != "" {
		where = append(where, "room_id = ?")
		args = append(args, f.RoomID)
	}
	if f.UserName != "" {
		where = append(where, "user_name = ?")
		args = append(args, f.UserName)
	}
	if !f.Since.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, f.Since.UnixMilli())
	}

	var b strings.Builder
	b.WriteString("SELECT id, action, user_name, room_id, details, ip, user_agent, ts FROM actions")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ts DESC, id DESC LIMIT ?")
	args = append(args, f.limit())
	return b.String(), args
}

func (s *SQLiteStore) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("audit sqlite: closing %s: %w", s.path, err)
	}
	log.Info().Str("module", "audit").Str("path", s.path).Msg("sqlite store closed")
	return nil
}
