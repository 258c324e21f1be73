package repo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

func TestCheckAppend(t *testing.T) {
	call := &entity.ToolCall{ID: "c1", Name: "dictionary_tool"}
	history := []*entity.Message{entity.NewUserMessage("define x"), entity.NewAssistantMessage("", call)}

	assert.NoError(t, CheckAppend(history, []*entity.Message{entity.NewToolMessage("c1", "dictionary_tool", "ok")}))
	assert.NoError(t, CheckAppend(nil, []*entity.Message{
		entity.NewAssistantMessage("", &entity.ToolCall{ID: "c2", Name: "news_tool"}),
		entity.NewToolMessage("c2", "news_tool", "ok"),
	}))

	err := CheckAppend(nil, []*entity.Message{entity.NewToolMessage("c1", "dictionary_tool", "ok")})
	assert.True(t, errors.Is(err, errno.ErrInvalidMessage))

	err = CheckAppend(nil, []*entity.Message{entity.NewSystemMessage("x")})
	assert.True(t, errors.Is(err, errno.ErrInvalidMessage))
}

func TestSortMetas(t *testing.T) {
	now := time.Now()
	metas := []*entity.ConversationMeta{
		{ThreadID: "old", UpdatedAt: now.Add(-time.Hour)},
		{ThreadID: "b", UpdatedAt: now},
		{ThreadID: "a", UpdatedAt: now},
	}
	SortMetas(metas)
	assert.Equal(t, "a", metas[0].ThreadID)
	assert.Equal(t, "b", metas[1].ThreadID)
	assert.Equal(t, "old", metas[2].ThreadID)
}
