package util

import (
	"net/http"
	"os"
	"time"

	"github.com/kiosk404/oracle/internal/oraclectl/client"
)

// DefaultServer is the address of a locally running oracle server.
const DefaultServer = "http://127.0.0.1:11788"

// ClientConfig holds the connection flags shared by every command.
type ClientConfig struct {
	Server  string
	Token   string
	Timeout time.Duration
}

// Factory provides the clients that oraclectl commands talk to the server with.
type Factory interface {
	HTTPClient() *http.Client
	Client() *client.Client
}

type factory struct {
	cfg *ClientConfig
}

// NewFactory returns a Factory that reads cfg lazily, after flags are parsed.
func NewFactory(cfg *ClientConfig) Factory {
	return &factory{cfg: cfg}
}

func (f *factory) HTTPClient() *http.Client {
	timeout := f.cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (f *factory) Client() *client.Client {
	token := f.cfg.Token
	if token == "" {
		token = os.Getenv(client.TokenEnv)
	}
	server := f.cfg.Server
	if server == "" {
		server = DefaultServer
	}
	return client.New(server, token, f.HTTPClient())
}
