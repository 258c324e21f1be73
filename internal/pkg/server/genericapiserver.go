package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/oracle/internal/pkg/core"
	"github.com/kiosk404/oracle/pkg/logger"
	"github.com/kiosk404/oracle/pkg/version"
)

// GenericAPIServer contains state for a gateway api server.
type GenericAPIServer struct {
	Address         string
	middlewares     []string
	healthz         bool
	enableProfiling bool

	*gin.Engine

	httpServer *http.Server
}

func initGenericAPIServer(s *GenericAPIServer) {
	s.Setup()
	s.InstallMiddlewares()
	s.InstallAPIs()
}

// InstallAPIs install generic apis.
func (s *GenericAPIServer) InstallAPIs() {
	if s.healthz {
		s.GET("/healthz", func(c *gin.Context) {
			core.WriteResponse(c, nil, map[string]string{"status": "ok"})
		})
	}

	s.GET("/version", func(c *gin.Context) {
		core.WriteResponse(c, nil, version.Get())
	})

	if s.enableProfiling {
		pprof.Register(s.Engine)
	}
}

// Setup do some setup work for gin engine.
func (s *GenericAPIServer) Setup() {
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		logger.Debug("[Server] %-6s %-s --> %s (%d handlers)", httpMethod, absolutePath, handlerName, nuHandlers)
	}
}

// InstallMiddlewares install generic middlewares.
func (s *GenericAPIServer) InstallMiddlewares() {
	for _, m := range s.middlewares {
		mw, ok := Middlewares[m]
		if !ok {
			logger.Warn("[Server] can not find middleware: %s", m)
			continue
		}

		logger.Info("[Server] install middleware: %s", m)
		s.Use(mw)
	}
}

// Run spawns the http server. It only returns when the port cannot be listened on initially.
func (s *GenericAPIServer) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.Address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("[Server] start to listening the incoming requests on http address: %s", s.Address)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("[Server] server on %s stopped", s.Address)
	return nil
}

// Close graceful shutdown the api server.
func (s *GenericAPIServer) Close() {
	if s.httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Warn("[Server] shutdown http server failed: %s", err.Error())
	}
}
