package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/entity"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/internal/oracle/service/tools"
	"github.com/kiosk404/oracle/pkg/logger"
)

const (
	// DefaultMaxRoundTrips is the default cap on model invocations per turn.
	DefaultMaxRoundTrips = 10
	// MaxRoundTripsCeiling bounds per-request overrides of the cap.
	MaxRoundTripsCeiling = 50

	DefaultModelTimeout = 60 * time.Second

	nodeRoute = "route"
	nodeChat  = "chat"
	nodeTools = "tools"

	moduleName = "runtime"
)

// TurnOptions configures a TurnController.
type TurnOptions struct {
	MaxRoundTrips int
	ModelTimeout  time.Duration
	ParallelTools bool
}

func (o TurnOptions) complete() TurnOptions {
	if o.MaxRoundTrips <= 0 {
		o.MaxRoundTrips = DefaultMaxRoundTrips
	}
	if o.MaxRoundTrips > MaxRoundTripsCeiling {
		o.MaxRoundTrips = MaxRoundTripsCeiling
	}
	if o.ModelTimeout <= 0 {
		o.ModelTimeout = DefaultModelTimeout
	}
	return o
}

// TurnController drives one turn of the chat/tool loop for a thread. It is safe for
// concurrent use across threads; callers serialize turns on the same thread.
type TurnController struct {
	client   ModelClient
	executor *tools.Executor
	store    repo.ConversationRepository
	opts     TurnOptions

	runner compose.Runnable[*turnState, *turnState]
}

// turnState is the value flowing through the graph. Messages past committed are in
// flight and not yet stored.
type turnState struct {
	threadID      string
	maxRoundTrips int

	messages   []*entity.Message
	committed  int
	started    int
	roundTrips int
	next       entity.TurnState

	err error
}

// NewTurnController compiles the turn graph.
func NewTurnController(ctx context.Context, client ModelClient, executor *tools.Executor, store repo.ConversationRepository, opts TurnOptions) (*TurnController, error) {
	c := &TurnController{
		client:   client,
		executor: executor,
		store:    store,
		opts:     opts.complete(),
	}

	g := compose.NewGraph[*turnState, *turnState]()
	if err := g.AddLambdaNode(nodeRoute, compose.InvokableLambda(c.route), compose.WithNodeName(nodeRoute)); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode(nodeChat, compose.InvokableLambda(c.chat), compose.WithNodeName(nodeChat)); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode(nodeTools, compose.InvokableLambda(c.runTools), compose.WithNodeName(nodeTools)); err != nil {
		return nil, err
	}

	branch := compose.NewGraphBranch(func(_ context.Context, s *turnState) (string, error) {
		switch s.next {
		case entity.StateModelThinking:
			return nodeChat, nil
		case entity.StateAwaitingTools:
			return nodeTools, nil
		default:
			return compose.END, nil
		}
	}, map[string]bool{nodeChat: true, nodeTools: true, compose.END: true})

	if err := g.AddEdge(compose.START, nodeRoute); err != nil {
		return nil, err
	}
	if err := g.AddBranch(nodeRoute, branch); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeChat, nodeRoute); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeTools, nodeRoute); err != nil {
		return nil, err
	}

	// route+chat+route+tools per round trip, plus the final route/chat/route.
	maxSteps := 4*MaxRoundTripsCeiling + 8
	runner, err := g.Compile(ctx,
		compose.WithGraphName("turn_loop"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
		compose.WithMaxRunSteps(maxSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile turn graph: %w", err)
	}
	c.runner = runner

	logger.Info("[TurnController] compiled, max_round_trips=%d, model_timeout=%v, parallel_tools=%v",
		c.opts.MaxRoundTrips, c.opts.ModelTimeout, c.opts.ParallelTools)
	return c, nil
}

// MaxRoundTrips returns the default cap.
func (c *TurnController) MaxRoundTrips() int {
	return c.opts.MaxRoundTrips
}

// Run appends input (when non-nil) to the thread and drives the loop to completion.
// maxRoundTrips overrides the configured cap when positive.
//
// On ErrTurnLimitExceeded and ErrTurnCancelled the partial result is returned along with
// the error; everything in it has been stored.
func (c *TurnController) Run(ctx context.Context, threadID string, input *entity.Message, maxRoundTrips int, handlers ...callbacks.Handler) (*entity.TurnResult, error) {
	history, err := c.store.History(ctx, threadID)
	if err != nil {
		return nil, err
	}

	s := &turnState{
		threadID:      threadID,
		maxRoundTrips: c.capFor(maxRoundTrips),
		messages:      history,
		committed:     len(history),
		started:       len(history),
	}

	if input != nil {
		if err := c.commit(ctx, s, input); err != nil {
			return nil, err
		}
	}

	opts := make([]compose.Option, 0, 1)
	if len(handlers) > 0 {
		opts = append(opts, compose.WithCallbacks(handlers...))
	}
	_, runErr := c.runner.Invoke(ctx, s, opts...)

	result := &entity.TurnResult{
		RoundTrips:  s.roundTrips,
		NewMessages: entity.CloneMessages(s.messages[s.started:s.committed]),
	}
	if s.committed > s.started {
		last := s.messages[s.committed-1]
		if last.Kind() == entity.KindAssistant && !last.HasToolCalls() {
			result.Final = last.Clone()
		}
	}

	switch {
	case s.err != nil:
		return result, s.err
	case runErr != nil:
		if ctx.Err() != nil {
			return result, fmt.Errorf("%w: %v", errno.ErrTurnCancelled, ctx.Err())
		}
		return result, fmt.Errorf("turn graph failed: %w", runErr)
	}
	return result, nil
}

func (c *TurnController) capFor(override int) int {
	if override <= 0 {
		return c.opts.MaxRoundTrips
	}
	if override > MaxRoundTripsCeiling {
		return MaxRoundTripsCeiling
	}
	return override
}

// route applies the transition function and checks for cancellation between round-trips.
func (c *TurnController) route(ctx context.Context, s *turnState) (*turnState, error) {
	next, err := NextState(s.messages)
	if err != nil {
		return s, s.fail(err)
	}
	if next != entity.StateDone && ctx.Err() != nil {
		return s, s.fail(fmt.Errorf("%w: %v", errno.ErrTurnCancelled, ctx.Err()))
	}
	if next == entity.StateModelThinking && s.roundTrips >= s.maxRoundTrips {
		return s, s.fail(fmt.Errorf("%w: %d round trips", errno.ErrTurnLimitExceeded, s.roundTrips))
	}

	logger.DebugX(moduleName, "[TurnController] thread %s: %s (round trip %d)", s.threadID, next, s.roundTrips)
	s.next = next
	return s, nil
}

// chat invokes the model once. A reply without tool calls is stored immediately; a reply
// requesting tools stays in flight until its results are ready.
func (c *TurnController) chat(ctx context.Context, s *turnState) (*turnState, error) {
	s.roundTrips++

	modelCtx, cancel := context.WithTimeout(ctx, c.opts.ModelTimeout)
	defer cancel()

	reply, err := c.client.Generate(modelCtx, entity.CloneMessages(s.messages), c.executor.Registry().ToolInfos())
	if err != nil {
		if ctx.Err() != nil {
			return s, s.fail(fmt.Errorf("%w: %v", errno.ErrTurnCancelled, ctx.Err()))
		}
		return s, s.fail(fmt.Errorf("%w: %v", errno.ErrModelClient, err))
	}
	if reply == nil {
		return s, s.fail(fmt.Errorf("%w: empty reply", errno.ErrModelClient))
	}

	reply.Role = entity.RoleAssistant
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now()
	}
	normalizeToolCalls(reply)

	if !reply.HasToolCalls() {
		if err := c.commit(ctx, s, reply); err != nil {
			return s, s.fail(err)
		}
		return s, nil
	}

	logger.InfoX(moduleName, "[TurnController] thread %s: model requested %d tool calls", s.threadID, len(reply.ToolCalls))
	s.messages = append(s.messages, reply)
	return s, nil
}

// runTools executes every call of the in-flight assistant message in call order and commits
// the message together with its results. A cancelled batch is discarded.
func (c *TurnController) runTools(ctx context.Context, s *turnState) (*turnState, error) {
	pending := s.messages[len(s.messages)-1]
	results := c.executor.ExecuteBatch(ctx, pending.ToolCalls, c.opts.ParallelTools)

	if ctx.Err() != nil {
		s.messages = s.messages[:s.committed]
		return s, s.fail(fmt.Errorf("%w: %v", errno.ErrTurnCancelled, ctx.Err()))
	}

	step := make([]*entity.Message, 0, len(results)+1)
	step = append(step, pending)
	for _, r := range results {
		step = append(step, r.ToMessage())
	}

	s.messages = s.messages[:s.committed]
	if err := c.commit(ctx, s, step...); err != nil {
		return s, s.fail(err)
	}
	return s, nil
}

// commit stores msgs and adds them to the working history. The append is not cancellable
// so a step is either fully stored or not at all.
func (c *TurnController) commit(ctx context.Context, s *turnState, msgs ...*entity.Message) error {
	if err := c.store.Append(context.WithoutCancel(ctx), s.threadID, msgs...); err != nil {
		return fmt.Errorf("append to thread %s: %w", s.threadID, err)
	}
	s.messages = append(s.messages[:s.committed], msgs...)
	s.committed = len(s.messages)
	return nil
}

func (s *turnState) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return err
}

// normalizeToolCalls gives every call a unique id and a name so each result can answer
// exactly one call.
func normalizeToolCalls(m *entity.Message) {
	seen := make(map[string]struct{}, len(m.ToolCalls))
	calls := m.ToolCalls[:0]
	for _, tc := range m.ToolCalls {
		if tc == nil {
			continue
		}
		if _, dup := seen[tc.ID]; tc.ID == "" || dup {
			tc.ID = "call_" + uuid.NewString()
		}
		seen[tc.ID] = struct{}{}
		if tc.Name == "" {
			tc.Name = unnamedTool
		}
		calls = append(calls, tc)
	}
	m.ToolCalls = calls
}

const unnamedTool = "unnamed_tool"

// IsTurnError reports whether err ended a turn without corrupting the conversation.
func IsTurnError(err error) bool {
	return errors.Is(err, errno.ErrModelClient) ||
		errors.Is(err, errno.ErrTurnLimitExceeded) ||
		errors.Is(err, errno.ErrTurnCancelled)
}
