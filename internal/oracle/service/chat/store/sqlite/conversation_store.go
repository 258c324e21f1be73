package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // Register SQLite3 driver

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/pkg/utils/json"
)

var _ repo.ConversationRepository = (*ConversationStore)(nil)

// ConversationStore implements the ConversationRepository interface on SQLite.
type ConversationStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*ConversationStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &ConversationStore{db: db}, nil
}

// Close closes the database handle.
func (s *ConversationStore) Close() error {
	return s.db.Close()
}

func (s *ConversationStore) Append(ctx context.Context, threadID string, msgs ...*entity.Message) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	history, err := loadMessages(ctx, tx, threadID)
	if err != nil {
		return err
	}
	if err = repo.CheckAppend(history, msgs); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return tx.Commit()
	}

	for i, msg := range msgs {
		data, mErr := json.MarshalString(msg)
		if mErr != nil {
			return fmt.Errorf("marshal message: %w", mErr)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO `+TableMessages+` (thread_id, seq, role, payload) VALUES (?, ?, ?, ?)`,
			threadID, len(history)+i, string(msg.Role), data,
		); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	now := time.Now().UnixNano()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO `+TableConversations+` (thread_id, message_count, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(thread_id) DO UPDATE SET message_count = excluded.message_count, updated_at = excluded.updated_at`,
		threadID, len(history)+len(msgs), now, now,
	); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	return tx.Commit()
}

func (s *ConversationStore) History(ctx context.Context, threadID string) ([]*entity.Message, error) {
	msgs, err := loadMessages(ctx, s.db, threadID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*entity.Message{}
	}
	return msgs, nil
}

func (s *ConversationStore) Get(ctx context.Context, threadID string) (*entity.Conversation, error) {
	meta, err := s.getMeta(ctx, threadID)
	if err != nil {
		return nil, err
	}
	msgs, err := loadMessages(ctx, s.db, threadID)
	if err != nil {
		return nil, err
	}
	return &entity.Conversation{
		ThreadID:  threadID,
		Messages:  msgs,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
	}, nil
}

func (s *ConversationStore) List(ctx context.Context) (metas []*entity.ConversationMeta, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, message_count, created_at, updated_at FROM `+TableConversations)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	for rows.Next() {
		meta, sErr := scanMeta(rows)
		if sErr != nil {
			return nil, sErr
		}
		metas = append(metas, meta)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	repo.SortMetas(metas)
	return metas, nil
}

func (s *ConversationStore) Delete(ctx context.Context, threadID string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM `+TableConversations+` WHERE thread_id = ?`, threadID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = errno.ErrConversationNotFound
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM `+TableMessages+` WHERE thread_id = ?`, threadID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return tx.Commit()
}

func (s *ConversationStore) getMeta(ctx context.Context, threadID string) (*entity.ConversationMeta, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT thread_id, message_count, created_at, updated_at FROM `+TableConversations+` WHERE thread_id = ?`,
		threadID)
	meta, err := scanMeta(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errno.ErrConversationNotFound
	}
	return meta, err
}

type scanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanMeta(sc scanner) (*entity.ConversationMeta, error) {
	var (
		meta             entity.ConversationMeta
		created, updated int64
	)
	if err := sc.Scan(&meta.ThreadID, &meta.MessageCount, &created, &updated); err != nil {
		return nil, err
	}
	meta.CreatedAt = time.Unix(0, created)
	meta.UpdatedAt = time.Unix(0, updated)
	return &meta, nil
}

func loadMessages(ctx context.Context, q querier, threadID string) (msgs []*entity.Message, err error) {
	rows, err := q.QueryContext(ctx,
		`SELECT payload FROM `+TableMessages+` WHERE thread_id = ? ORDER BY seq ASC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	for rows.Next() {
		var payload string
		if err = rows.Scan(&payload); err != nil {
			return nil, err
		}
		var msg entity.Message
		if err = json.UnmarshalString(payload, &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}
