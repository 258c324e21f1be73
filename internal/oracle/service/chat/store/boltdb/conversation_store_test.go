package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo/repotest"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	db, err := Open(path)
	require.NoError(t, err)
	return db
}

func TestConversationStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repo.ConversationRepository {
		db := openTestDB(t, filepath.Join(t.TempDir(), "oracle.db"))
		t.Cleanup(func() { _ = db.Close() })
		return NewConversationStore(db)
	})
}

func TestConversationStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "oracle.db")
	ctx := context.Background()

	db := openTestDB(t, path)
	store := NewConversationStore(db)
	require.NoError(t, store.Append(ctx, "demo-thread",
		entity.NewUserMessage("define serendipity"),
		entity.NewAssistantMessage("A happy accident."),
	))
	require.NoError(t, db.Close())

	db = openTestDB(t, path)
	defer db.Close()
	history, err := NewConversationStore(db).History(ctx, "demo-thread")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "A happy accident.", history[1].Content)
}
