// Package repotest holds the behavior every ConversationRepository backend must share.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

// Factory returns an empty repository; cleanup is registered on t.
type Factory func(t *testing.T) repo.ConversationRepository

// Run exercises a repository implementation against the shared contract.
func Run(t *testing.T, newRepo Factory) {
	t.Run("unknown thread has empty history", func(t *testing.T) {
		r := newRepo(t)
		history, err := r.History(context.Background(), "nope")
		require.NoError(t, err)
		assert.Empty(t, history)

		_, err = r.Get(context.Background(), "nope")
		assert.True(t, errors.Is(err, errno.ErrConversationNotFound))
	})

	t.Run("append keeps order and creates conversation", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		call := &entity.ToolCall{ID: "call-1", Name: "weather_tool", Arguments: `{"location":"Paris,FR"}`}
		require.NoError(t, r.Append(ctx, "t1", entity.NewUserMessage("weather in Paris,FR")))
		require.NoError(t, r.Append(ctx, "t1",
			entity.NewAssistantMessage("", call),
			entity.NewToolMessage("call-1", "weather_tool", "Clear, 18°C, Humidity: 60%"),
		))
		require.NoError(t, r.Append(ctx, "t1", entity.NewAssistantMessage("It's clear and 18°C in Paris.")))

		history, err := r.History(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, history, 4)
		assert.Equal(t, entity.RoleUser, history[0].Role)
		assert.Equal(t, "call-1", history[1].ToolCalls[0].ID)
		assert.Equal(t, `{"location":"Paris,FR"}`, history[1].ToolCalls[0].Arguments)
		assert.Equal(t, "call-1", history[2].ToolCallID)
		assert.Equal(t, "It's clear and 18°C in Paris.", history[3].Content)

		conv, err := r.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "t1", conv.ThreadID)
		assert.Len(t, conv.Messages, 4)
		assert.False(t, conv.CreatedAt.IsZero())
	})

	t.Run("tool result must answer an emitted call", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Append(ctx, "t1", entity.NewUserMessage("hi")))
		err := r.Append(ctx, "t1",
			entity.NewAssistantMessage("still valid"),
			entity.NewToolMessage("ghost", "weather_tool", "x"),
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errno.ErrInvalidMessage))

		history, err := r.History(ctx, "t1")
		require.NoError(t, err)
		assert.Len(t, history, 1, "a rejected batch must not be partially stored")
	})

	t.Run("returned history is a copy", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Append(ctx, "t1", entity.NewUserMessage("original")))
		history, err := r.History(ctx, "t1")
		require.NoError(t, err)
		history[0].Content = "mutated"

		again, err := r.History(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "original", again[0].Content)
	})

	t.Run("list and delete", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Append(ctx, "a", entity.NewUserMessage("1")))
		require.NoError(t, r.Append(ctx, "b", entity.NewUserMessage("1"), entity.NewAssistantMessage("2")))

		metas, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, metas, 2)
		counts := map[string]int{}
		for _, m := range metas {
			counts[m.ThreadID] = m.MessageCount
		}
		assert.Equal(t, map[string]int{"a": 1, "b": 2}, counts)

		require.NoError(t, r.Delete(ctx, "a"))
		assert.True(t, errors.Is(r.Delete(ctx, "a"), errno.ErrConversationNotFound))

		metas, err = r.List(ctx)
		require.NoError(t, err)
		require.Len(t, metas, 1)
		assert.Equal(t, "b", metas[0].ThreadID)
	})

	t.Run("concurrent appends on different threads", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				thread := fmt.Sprintf("thread-%d", i)
				for j := 0; j < 5; j++ {
					assert.NoError(t, r.Append(ctx, thread, entity.NewUserMessage(fmt.Sprintf("%d", j))))
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < 8; i++ {
			history, err := r.History(ctx, fmt.Sprintf("thread-%d", i))
			require.NoError(t, err)
			require.Len(t, history, 5)
			for j, m := range history {
				assert.Equal(t, fmt.Sprintf("%d", j), m.Content)
			}
		}
	})
}
