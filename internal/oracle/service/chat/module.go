package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service/runtime"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service/runtime/prompt"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/retention"
	boltdbStore "github.com/kiosk404/oracle/internal/oracle/service/chat/store/boltdb"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/store/inmemory"
	sqliteStore "github.com/kiosk404/oracle/internal/oracle/service/chat/store/sqlite"
	"github.com/kiosk404/oracle/internal/oracle/service/llm"
	"github.com/kiosk404/oracle/internal/oracle/service/mcp"
	"github.com/kiosk404/oracle/internal/oracle/service/tools"
	"github.com/kiosk404/oracle/internal/oracle/service/tools/builtin"
	"github.com/kiosk404/oracle/pkg/logger"
)

const (
	StoreInMemory = "inmemory"
	StoreBoltDB   = "boltdb"
	StoreSQLite   = "sqlite"
)

// Config holds the configuration for the Chat module.
// Follows K8S-style: Config → Complete() → New(ctx, deps).
type Config struct {
	// --- Turn loop ---

	// MaxRoundTrips caps model invocations per turn (default: 10, at most 50).
	MaxRoundTrips int
	ModelTimeout  time.Duration
	// SystemPrompt is prepended to every model call and never stored.
	SystemPrompt string
	// SystemPromptFile, when set, is watched and takes precedence over SystemPrompt.
	SystemPromptFile string
	DefaultThreadID  string
	InlineErrors     bool

	// --- Tools ---

	ToolTimeout   time.Duration
	ParallelTools bool
	// EnabledTools selects builtin tools by name; empty enables all of them.
	EnabledTools []string
	Builtin      builtin.Config

	// --- Storage ---

	// StoreType selects the persistence backend: "inmemory", "boltdb" or "sqlite".
	// Default: "inmemory".
	StoreType  string
	BoltDBPath string
	SQLitePath string

	// --- Retention ---

	IdleTTL          time.Duration
	MaxConversations int
	// SweepInterval enables the retention sweeper when positive.
	SweepInterval time.Duration
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.MaxRoundTrips <= 0 {
		c.MaxRoundTrips = runtime.DefaultMaxRoundTrips
	}
	if c.ModelTimeout <= 0 {
		c.ModelTimeout = runtime.DefaultModelTimeout
	}
	if c.ToolTimeout <= 0 {
		c.ToolTimeout = tools.DefaultTimeout
	}
	if c.DefaultThreadID == "" {
		c.DefaultThreadID = service.DefaultThreadID
	}
	if c.StoreType == "" {
		c.StoreType = StoreInMemory
	}
	if c.BoltDBPath == "" {
		c.BoltDBPath = "data/oracle.db"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/oracle.sqlite"
	}
	return CompletedConfig{c}
}

// Dependencies holds the external modules required by the Chat module.
type Dependencies struct {
	LLM *llm.Module
	MCP *mcp.Module // may be nil if no MCP servers are configured

	// Model replaces the LLM module's chat model when set.
	Model runtime.ModelClient
}

// Module is the top-level Chat module.
//
// It exposes:
//   - Service: turns, streaming and thread management
//   - Tools: the frozen tool registry advertised to the model
type Module struct {
	Service    service.ChatService
	Controller *runtime.TurnController
	Store      repo.ConversationRepository
	Tools      *tools.Registry
	Sweeper    *retention.Sweeper

	closers []io.Closer
	cancel  context.CancelFunc
}

// Close stops the sweeper and releases the store and prompt watcher.
func (m *Module) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New creates and initializes the Chat module from a completed config.
func (c CompletedConfig) New(ctx context.Context, deps Dependencies) (mod *Module, err error) {
	logger.Info("[Chat] creating Chat module...")

	client := deps.Model
	if client == nil && deps.LLM == nil {
		return nil, fmt.Errorf("LLM module dependency is required")
	}

	m := &Module{}
	defer func() {
		if err != nil {
			_ = m.Close()
		}
	}()

	registry, err := c.buildRegistry(ctx, deps.MCP)
	if err != nil {
		return nil, err
	}
	m.Tools = registry
	logger.Info("[Chat] tool registry frozen with %d tools: %v", registry.Len(), registry.Names())

	store, err := c.openStore(m)
	if err != nil {
		return nil, err
	}
	m.Store = store

	if client == nil {
		source, err := c.promptSource(m)
		if err != nil {
			return nil, err
		}
		client = runtime.NewEinoModelClient(deps.LLM.ChatModel, source)
	}

	executor := tools.NewExecutor(registry, c.ToolTimeout)
	ctrl, err := runtime.NewTurnController(ctx, client, executor, store, runtime.TurnOptions{
		MaxRoundTrips: c.MaxRoundTrips,
		ModelTimeout:  c.ModelTimeout,
		ParallelTools: c.ParallelTools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build turn controller: %w", err)
	}
	m.Controller = ctrl

	m.Service = service.NewChatService(store, ctrl, service.Options{
		DefaultThreadID: c.DefaultThreadID,
		InlineErrors:    c.InlineErrors,
	})

	policy := retention.All(retention.IdleTTL(c.IdleTTL), retention.MaxConversations(c.MaxConversations))
	m.Sweeper = retention.NewSweeper(store, policy, c.SweepInterval, m.Service.DeleteThread)

	sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.Sweeper.Start(sweepCtx)

	logger.Info("[Chat] module ready (store=%s, max round trips=%d)", c.StoreType, ctrl.MaxRoundTrips())
	return m, nil
}

// buildRegistry freezes the builtin tools plus every tool discovered over MCP.
// MCP tools whose names collide with an earlier tool are skipped.
func (c CompletedConfig) buildRegistry(ctx context.Context, mcpModule *mcp.Module) (*tools.Registry, error) {
	specs, err := builtin.Specs(&c.Builtin, c.EnabledTools...)
	if err != nil {
		return nil, err
	}
	if mcpModule == nil {
		return tools.NewRegistry(specs...)
	}

	discovered, err := mcpModule.ToolSpecs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load MCP tools: %w", err)
	}
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		seen[s.Name] = struct{}{}
	}
	for _, s := range discovered {
		if _, dup := seen[s.Name]; dup {
			logger.Warn("[Chat] MCP tool %s shadows an existing tool, skipped", s.Name)
			continue
		}
		seen[s.Name] = struct{}{}
		specs = append(specs, s)
	}
	return tools.NewRegistry(specs...)
}

func (c CompletedConfig) openStore(m *Module) (repo.ConversationRepository, error) {
	switch c.StoreType {
	case StoreBoltDB:
		db, err := boltdbStore.Open(c.BoltDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb at %s: %w", c.BoltDBPath, err)
		}
		m.closers = append(m.closers, db)
		logger.Info("[Chat] using BoltDB store at %s", c.BoltDBPath)
		return boltdbStore.NewConversationStore(db), nil
	case StoreSQLite:
		store, err := sqliteStore.Open(c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite at %s: %w", c.SQLitePath, err)
		}
		m.closers = append(m.closers, store)
		logger.Info("[Chat] using SQLite store at %s", c.SQLitePath)
		return store, nil
	case StoreInMemory:
		logger.Info("[Chat] using in-memory store")
		return inmemory.NewConversationStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", c.StoreType)
	}
}

func (c CompletedConfig) promptSource(m *Module) (runtime.PromptSource, error) {
	if c.SystemPromptFile == "" {
		return prompt.Static(c.SystemPrompt), nil
	}
	source, err := prompt.NewFileSource(c.SystemPromptFile, c.SystemPrompt)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, source)
	return source, nil
}
