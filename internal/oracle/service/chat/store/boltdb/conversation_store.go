package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/pkg/utils/json"
)

var _ repo.ConversationRepository = (*ConversationStore)(nil)

// ConversationStore implements the ConversationRepository interface using BoltDB.
type ConversationStore struct {
	boltDB *bolt.DB
}

// NewConversationStore creates a new ConversationStore instance.
func NewConversationStore(boltDB *DB) *ConversationStore {
	return &ConversationStore{boltDB: boltDB.Bolt()}
}

func (s *ConversationStore) Append(_ context.Context, threadID string, msgs ...*entity.Message) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		threads := tx.Bucket(bucketThreads)
		history, err := readMessages(threads.Bucket([]byte(threadID)))
		if err != nil {
			return err
		}
		if err := repo.CheckAppend(history, msgs); err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}

		b, err := threads.CreateBucketIfNotExists([]byte(threadID))
		if err != nil {
			return fmt.Errorf("failed to create thread bucket %q: %w", threadID, err)
		}
		for _, msg := range msgs {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			data, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("failed to marshal message: %w", err)
			}
			if err := b.Put(itob(seq), data); err != nil {
				return err
			}
		}

		meta, err := getMeta(tx, threadID)
		if err != nil {
			return err
		}
		now := time.Now()
		if meta == nil {
			meta = &entity.ConversationMeta{ThreadID: threadID, CreatedAt: now}
		}
		meta.MessageCount = len(history) + len(msgs)
		meta.UpdatedAt = now
		return putMeta(tx, meta)
	})
}

func (s *ConversationStore) History(_ context.Context, threadID string) ([]*entity.Message, error) {
	var history []*entity.Message
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		var err error
		history, err = readMessages(tx.Bucket(bucketThreads).Bucket([]byte(threadID)))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %q: %w", threadID, err)
	}
	if history == nil {
		history = []*entity.Message{}
	}
	return history, nil
}

func (s *ConversationStore) Get(_ context.Context, threadID string) (*entity.Conversation, error) {
	var conv *entity.Conversation
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		meta, err := getMeta(tx, threadID)
		if err != nil {
			return err
		}
		if meta == nil {
			return errno.ErrConversationNotFound
		}
		msgs, err := readMessages(tx.Bucket(bucketThreads).Bucket([]byte(threadID)))
		if err != nil {
			return err
		}
		conv = &entity.Conversation{
			ThreadID:  threadID,
			Messages:  msgs,
			CreatedAt: meta.CreatedAt,
			UpdatedAt: meta.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %q: %w", threadID, err)
	}
	return conv, nil
}

func (s *ConversationStore) List(_ context.Context) ([]*entity.ConversationMeta, error) {
	var metas []*entity.ConversationMeta
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketThreadMeta).ForEach(func(k, v []byte) error {
			var meta entity.ConversationMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return fmt.Errorf("failed to unmarshal meta of %q: %w", k, err)
			}
			metas = append(metas, &meta)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	repo.SortMetas(metas)
	return metas, nil
}

func (s *ConversationStore) Delete(_ context.Context, threadID string) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket(bucketThreadMeta)
		if metaBucket.Get([]byte(threadID)) == nil {
			return errno.ErrConversationNotFound
		}
		if err := metaBucket.Delete([]byte(threadID)); err != nil {
			return err
		}
		threads := tx.Bucket(bucketThreads)
		if threads.Bucket([]byte(threadID)) == nil {
			return nil
		}
		return threads.DeleteBucket([]byte(threadID))
	})
}

func readMessages(b *bolt.Bucket) ([]*entity.Message, error) {
	if b == nil {
		return nil, nil
	}
	var msgs []*entity.Message
	err := b.ForEach(func(k, v []byte) error {
		var msg entity.Message
		if err := json.Unmarshal(v, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal message %d: %w", binary.BigEndian.Uint64(k), err)
		}
		msgs = append(msgs, &msg)
		return nil
	})
	return msgs, err
}

func getMeta(tx *bolt.Tx, threadID string) (*entity.ConversationMeta, error) {
	data := tx.Bucket(bucketThreadMeta).Get([]byte(threadID))
	if data == nil {
		return nil, nil
	}
	var meta entity.ConversationMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meta of %q: %w", threadID, err)
	}
	return &meta, nil
}

func putMeta(tx *bolt.Tx, meta *entity.ConversationMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	return tx.Bucket(bucketThreadMeta).Put([]byte(meta.ThreadID), data)
}

// itob returns an 8-byte big endian representation of v, keeping bolt's key order numeric.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
