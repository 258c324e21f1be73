package oracle

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/kiosk404/oracle/internal/oracle/config"
	"github.com/kiosk404/oracle/internal/oracle/handler/middleware"
	"github.com/kiosk404/oracle/internal/oracle/service/chat"
	"github.com/kiosk404/oracle/internal/oracle/service/llm"
	"github.com/kiosk404/oracle/internal/oracle/service/llm/provider/helper"
	"github.com/kiosk404/oracle/internal/oracle/service/mcp"
	"github.com/kiosk404/oracle/internal/oracle/service/tools/builtin"
	genericapiserver "github.com/kiosk404/oracle/internal/pkg/server"
	"github.com/kiosk404/oracle/pkg/http/shutdown"
	"github.com/kiosk404/oracle/pkg/http/shutdown/posixsignal"
	"github.com/kiosk404/oracle/pkg/logger"
)

const grpcServiceName = "oracle"

type apiServer struct {
	gs               *shutdown.GracefulShutdown
	gRPCAPIServer    *genericapiserver.GRPCAPIServer
	genericAPIServer *genericapiserver.GenericAPIServer

	cfg        *config.Config
	llmModule  *llm.Module
	mcpModule  *mcp.Module
	chatModule *chat.Module
}

type preparedAPIServer struct {
	*apiServer
}

// ExtraConfig defines extra configuration for the API server.
type ExtraConfig struct {
	Enabled    bool
	Addr       string
	MaxMsgSize int
}

type completedExtraConfig struct {
	*ExtraConfig
}

// Complete fills in any fields not set that are required to have valid data and can be derived from other fields.
func (c *ExtraConfig) complete() *completedExtraConfig {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:11789"
	}

	return &completedExtraConfig{c}
}

// New create a grpcAPIServer instance. It is nil when gRPC is disabled.
func (c *completedExtraConfig) New() (*genericapiserver.GRPCAPIServer, error) {
	if !c.Enabled {
		return nil, nil
	}
	opts := []grpc.ServerOption{grpc.MaxRecvMsgSize(c.MaxMsgSize)}
	grpcServer := grpc.NewServer(opts...)

	reflection.Register(grpcServer)

	return genericapiserver.NewGRPCAPIServer(grpcServer, c.Addr), nil
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	gs := shutdown.New()
	gs.AddShutdownManager(posixsignal.NewPosixSignalManager())

	genericConfig, err := buildGenericConfig(cfg)
	if err != nil {
		return nil, err
	}

	genericServer, err := genericConfig.Complete().New()
	if err != nil {
		return nil, err
	}
	extraServer, err := buildExtraConfig(cfg).complete().New()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	// Initialize LLM module (K8S-style: Config → Complete → New).
	llmCfg := &llm.Config{
		ModelOptions: cfg.ModelOptions,
	}
	llmModule, err := llmCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM module: %w", err)
	}
	logger.Info("[Oracle] LLM module initialized successfully")

	// Load MCP configuration from standalone file (Claude Desktop compatible format).
	mcpFileCfg, err := mcp.LoadMCPConfig(cfg.MCPOptions.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load MCP config from %q: %w", cfg.MCPOptions.ConfigFile, err)
	}
	mcpCfg := &mcp.Config{
		MCPConfig:      mcpFileCfg,
		ConnectTimeout: cfg.MCPOptions.ConnectTimeout,
	}
	mcpModule, err := mcpCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP module: %w", err)
	}
	logger.Info("[Oracle] MCP module initialized successfully")

	chatModule, err := buildChatConfig(cfg).Complete().New(ctx, chat.Dependencies{
		LLM: llmModule,
		MCP: mcpModule,
	})
	if err != nil {
		_ = mcpModule.Close()
		return nil, fmt.Errorf("failed to create Chat module: %w", err)
	}
	logger.Info("[Oracle] Chat module initialized successfully")

	return &apiServer{
		gs:               gs,
		genericAPIServer: genericServer,
		gRPCAPIServer:    extraServer,
		cfg:              cfg,
		llmModule:        llmModule,
		mcpModule:        mcpModule,
		chatModule:       chatModule,
	}, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	authCfg := &middleware.AuthConfig{}
	s.cfg.AuthOptions.ApplyTo(authCfg)

	initRouter(s.genericAPIServer.Engine, &routerDeps{
		chatService:     s.chatModule.Service,
		tools:           s.chatModule.Tools,
		models:          s.llmModule,
		authConfig:      authCfg,
		defaultThreadID: s.cfg.ChatOptions.DefaultThreadID,
		defaultModel:    s.llmModule.Connection.Model,
	})

	s.gs.AddShutdownCallback(shutdown.Func(func(string) error {
		// Close chat module first so no turn outlives its MCP tools.
		if s.chatModule != nil {
			if err := s.chatModule.Close(); err != nil {
				logger.Warn("[Oracle] close chat module: %v", err)
			}
		}
		if s.mcpModule != nil {
			if err := s.mcpModule.Close(); err != nil {
				logger.Warn("[Oracle] close MCP module: %v", err)
			}
		}
		if s.gRPCAPIServer != nil {
			s.gRPCAPIServer.Stop()
		}
		s.genericAPIServer.Close()
		return nil
	}))
	return preparedAPIServer{s}
}

func (s preparedAPIServer) Run() error {
	if s.gRPCAPIServer != nil {
		s.gRPCAPIServer.SetServingStatus(grpcServiceName, true)
		go s.gRPCAPIServer.Run()
	}

	// start shutdown managers
	if err := s.gs.Start(); err != nil {
		log.Fatalf("start shutdown manager failed: %s", err.Error())
	}

	return s.genericAPIServer.Run()
}

func buildGenericConfig(cfg *config.Config) (genericConfig *genericapiserver.Config, lastErr error) {
	genericConfig = genericapiserver.NewConfig()
	if lastErr = cfg.GenericServerRunOptions.ApplyTo(genericConfig); lastErr != nil {
		return
	}

	return
}

func buildExtraConfig(cfg *config.Config) *ExtraConfig {
	return &ExtraConfig{
		Enabled:    cfg.GRPCOptions.Enabled,
		Addr:       fmt.Sprintf("%s:%d", cfg.GRPCOptions.BindAddress, cfg.GRPCOptions.BindPort),
		MaxMsgSize: cfg.GRPCOptions.MaxMsgSize,
	}
}

func buildChatConfig(cfg *config.Config) *chat.Config {
	tools := cfg.ToolsOptions
	store := cfg.StoreOptions
	return &chat.Config{
		MaxRoundTrips:    cfg.ChatOptions.MaxRoundTrips,
		ModelTimeout:     cfg.ModelOptions.Timeout,
		SystemPrompt:     cfg.ChatOptions.SystemPrompt,
		SystemPromptFile: cfg.ChatOptions.SystemPromptFile,
		DefaultThreadID:  cfg.ChatOptions.DefaultThreadID,
		InlineErrors:     cfg.ChatOptions.InlineErrors,

		ToolTimeout:   tools.Timeout,
		ParallelTools: tools.Parallel,
		EnabledTools:  tools.Enabled,
		Builtin: builtin.Config{
			WeatherBaseURL:    tools.WeatherBaseURL,
			WeatherAPIKey:     helper.ResolveEnvValue(tools.WeatherAPIKey),
			DictionaryBaseURL: tools.DictionaryBaseURL,
			NewsBaseURL:       tools.NewsBaseURL,
			NewsAPIKey:        helper.ResolveEnvValue(tools.NewsAPIKey),
		},

		StoreType:        store.Type,
		BoltDBPath:       store.BoltDBPath,
		SQLitePath:       store.SQLitePath,
		IdleTTL:          store.IdleTTL,
		MaxConversations: store.MaxConversations,
		SweepInterval:    store.SweepInterval,
	}
}
