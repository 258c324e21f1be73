package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service/runtime"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service/runtime/runtimetest"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/retention"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/store/inmemory"
	"github.com/kiosk404/oracle/internal/oracle/service/tools"
)

func newTestService(t *testing.T, client runtime.ModelClient, opts Options) (ChatService, *inmemory.ConversationStore) {
	t.Helper()
	registry, err := tools.NewRegistry(&tools.ToolSpec{
		Name:        "weather_tool",
		ErrorMarker: "WEATHER_ERROR",
		Parameters: []tools.ParameterDef{
			{Name: "location", Type: tools.TypeString, Required: true},
		},
		Action: func(context.Context, map[string]any) (string, error) {
			return "Weather in Paris,FR: Clear sky, 18°C, Humidity: 60%", nil
		},
	})
	require.NoError(t, err)

	store := inmemory.NewConversationStore()
	ctrl, err := runtime.NewTurnController(context.Background(), client, tools.NewExecutor(registry, time.Second), store, runtime.TurnOptions{})
	require.NoError(t, err)
	return NewChatService(store, ctrl, opts), store
}

func TestProcessTurn(t *testing.T) {
	model := runtimetest.NewScriptedModel().
		Call(&entity.ToolCall{ID: "call_1", Name: "weather_tool", Arguments: `{"location":"Paris,FR"}`}).
		Reply("Clear and 18°C.")
	svc, store := newTestService(t, model, Options{})

	entries, err := svc.ProcessTurn(context.Background(), &TurnRequest{Text: "Weather in Paris?"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.RoleAssistant, entries[0].Role)
	assert.Equal(t, "Clear and 18°C.", entries[0].Content)

	// no thread id selects the default thread
	history, err := store.History(context.Background(), DefaultThreadID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestProcessTurn_EmptyInput(t *testing.T) {
	svc, _ := newTestService(t, runtimetest.NewScriptedModel(), Options{InlineErrors: true})

	for _, req := range []*TurnRequest{nil, {Text: ""}, {Text: "  \n"}} {
		_, err := svc.ProcessTurn(context.Background(), req)
		assert.ErrorIs(t, err, errno.ErrEmptyInput)
	}
}

func TestProcessTurn_InlineErrors(t *testing.T) {
	svc, store := newTestService(t, runtimetest.NewScriptedModel().Fail(errors.New("503 upstream")), Options{InlineErrors: true})

	entries, err := svc.ProcessTurn(context.Background(), &TurnRequest{Text: "hi", ThreadID: "t"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.RoleAssistant, entries[0].Role)
	assert.Contains(t, entries[0].Content, "Error: ")
	assert.Contains(t, entries[0].Content, "503 upstream")

	// the synthesized reply is not stored
	history, err := store.History(context.Background(), "t")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	svc, _ = newTestService(t, runtimetest.NewScriptedModel().Fail(errors.New("503 upstream")), Options{})
	_, err = svc.ProcessTurn(context.Background(), &TurnRequest{Text: "hi", ThreadID: "t"})
	assert.ErrorIs(t, err, errno.ErrModelClient)
}

func TestProcessTurn_SeedsEmptyThread(t *testing.T) {
	model := runtimetest.NewScriptedModel().Reply("Nice to meet you, Ada.").Reply("Still Ada.")
	svc, store := newTestService(t, model, Options{})

	seed := []*entity.ChatEntry{
		{Role: entity.RoleSystem, Content: "ignored"},
		{Role: entity.RoleUser, Content: "My name is Ada."},
		{Role: entity.RoleAssistant, Content: "Hello Ada."},
		{Role: entity.RoleUser, Content: ""},
	}
	_, err := svc.ProcessTurn(context.Background(), &TurnRequest{Text: "Who am I?", ThreadID: "s", History: seed})
	require.NoError(t, err)

	history, err := store.History(context.Background(), "s")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "My name is Ada.", history[0].Content)
	assert.Equal(t, "Hello Ada.", history[1].Content)

	// the model saw the seeded messages
	require.Len(t, model.Calls(), 1)
	assert.Len(t, model.Calls()[0], 3)

	// a thread with history ignores the seed
	_, err = svc.ProcessTurn(context.Background(), &TurnRequest{Text: "Again?", ThreadID: "s", History: seed})
	require.NoError(t, err)
	history, err = store.History(context.Background(), "s")
	require.NoError(t, err)
	assert.Len(t, history, 6)
}

func TestProcessTurn_SeedSkipsCurrentUtterance(t *testing.T) {
	svc, store := newTestService(t, runtimetest.NewScriptedModel().Reply("Paris."), Options{})

	seed := []*entity.ChatEntry{
		{Role: entity.RoleUser, Content: "Hi"},
		{Role: entity.RoleAssistant, Content: "Hello!"},
		{Role: entity.RoleUser, Content: "Where am I?"},
	}
	_, err := svc.ProcessTurn(context.Background(), &TurnRequest{Text: "Where am I?", ThreadID: "u", History: seed})
	require.NoError(t, err)

	history, err := store.History(context.Background(), "u")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, []string{"Hi", "Hello!", "Where am I?", "Paris."},
		[]string{history[0].Content, history[1].Content, history[2].Content, history[3].Content})
}

func TestRunTurn_ThreadBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	model := runtimetest.ModelFunc(func(context.Context, []*entity.Message, []*schema.ToolInfo) (*entity.Message, error) {
		close(started)
		<-release
		return entity.NewAssistantMessage("done"), nil
	})
	svc, _ := newTestService(t, model, Options{})

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.RunTurn(context.Background(), &TurnRequest{Text: "first", ThreadID: "busy"})
		errCh <- err
	}()
	<-started

	assert.True(t, svc.Busy("busy"))
	_, err := svc.RunTurn(context.Background(), &TurnRequest{Text: "second", ThreadID: "busy"})
	assert.ErrorIs(t, err, errno.ErrThreadBusy)
	assert.ErrorIs(t, svc.DeleteThread(context.Background(), "busy"), errno.ErrThreadBusy)

	close(release)
	require.NoError(t, <-errCh)
	assert.False(t, svc.Busy("busy"))
}

func TestSweepDuringTurn(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	model := runtimetest.ModelFunc(func(context.Context, []*entity.Message, []*schema.ToolInfo) (*entity.Message, error) {
		close(started)
		<-release
		return entity.NewAssistantMessage("reply"), nil
	})
	svc, store := newTestService(t, model, Options{})
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "t", entity.NewUserMessage("earlier"), entity.NewAssistantMessage("earlier reply")))

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.RunTurn(ctx, &TurnRequest{Text: "now", ThreadID: "t"})
		errCh <- err
	}()
	<-started

	everything := retention.PolicyFunc(func(_ time.Time, metas []*entity.ConversationMeta) []string {
		ids := make([]string, 0, len(metas))
		for _, m := range metas {
			ids = append(ids, m.ThreadID)
		}
		return ids
	})
	sweeper := retention.NewSweeper(store, everything, time.Minute, svc.DeleteThread)
	n, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	close(release)
	require.NoError(t, <-errCh)

	history, err := store.History(ctx, "t")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "earlier", history[0].Content)
	assert.Equal(t, "now", history[2].Content)
	assert.Equal(t, "reply", history[3].Content)

	n, err = sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func drain(t *testing.T, sr *schema.StreamReader[*entity.TurnEvent]) []*entity.TurnEvent {
	t.Helper()
	defer sr.Close()
	var events []*entity.TurnEvent
	for {
		ev, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestStreamTurn(t *testing.T) {
	model := runtimetest.NewScriptedModel().
		Call(&entity.ToolCall{ID: "call_1", Name: "weather_tool", Arguments: `{"location":"Paris,FR"}`}).
		Reply("Clear and 18°C.")
	svc, _ := newTestService(t, model, Options{})

	sr, err := svc.StreamTurn(context.Background(), &TurnRequest{Text: "Weather in Paris?", ThreadID: "s"})
	require.NoError(t, err)
	events := drain(t, sr)

	types := make([]entity.EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
		assert.Equal(t, "s", ev.ThreadID)
	}
	assert.Equal(t, []entity.EventType{
		entity.EventToolCallStart,
		entity.EventToolCallEnd,
		entity.EventMessage,
		entity.EventDone,
	}, types)
	assert.Equal(t, "weather_tool", events[0].ToolCall.Name)
	assert.Contains(t, events[1].ToolResult.Content, "Clear sky")
	assert.Equal(t, "Clear and 18°C.", events[2].Delta)
	assert.Equal(t, 2, events[3].RoundTrips)

	assert.Eventually(t, func() bool { return !svc.Busy("s") }, time.Second, 10*time.Millisecond)
}

func TestStreamTurn_Error(t *testing.T) {
	svc, _ := newTestService(t, runtimetest.NewScriptedModel().Fail(errors.New("boom")), Options{})

	sr, err := svc.StreamTurn(context.Background(), &TurnRequest{Text: "hi"})
	require.NoError(t, err)
	events := drain(t, sr)

	require.Len(t, events, 2)
	assert.Equal(t, entity.EventError, events[0].Type)
	assert.Contains(t, events[0].Error, "boom")
	assert.Equal(t, entity.EventDone, events[1].Type)

	_, err = svc.StreamTurn(context.Background(), &TurnRequest{Text: ""})
	assert.ErrorIs(t, err, errno.ErrEmptyInput)
}

func TestThreads(t *testing.T) {
	model := runtimetest.NewScriptedModel().Reply("one").Reply("two")
	svc, _ := newTestService(t, model, Options{DefaultThreadID: "main"})
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, &TurnRequest{Text: "a", ThreadID: "x"})
	require.NoError(t, err)
	_, err = svc.ProcessTurn(ctx, &TurnRequest{Text: "b"})
	require.NoError(t, err)

	metas, err := svc.ListThreads(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)

	history, err := svc.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[1].Content)

	require.NoError(t, svc.DeleteThread(ctx, "x"))
	assert.ErrorIs(t, svc.DeleteThread(ctx, "x"), errno.ErrConversationNotFound)

	metas, err = svc.ListThreads(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "main", metas[0].ThreadID)
}
