package server

import (
	"net"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Config is a structure used to configure a GenericAPIServer.
type Config struct {
	Mode            string
	BindAddress     string
	BindPort        int
	Healthz         bool
	EnableProfiling bool
	Middlewares     []string
}

// NewConfig returns a Config struct with the default values.
func NewConfig() *Config {
	return &Config{
		Mode:            gin.ReleaseMode,
		BindAddress:     "127.0.0.1",
		BindPort:        11788,
		Healthz:         true,
		EnableProfiling: false,
		Middlewares:     []string{"recovery", "requestid", "logger", "cors"},
	}
}

// CompletedConfig is the completed configuration for GenericAPIServer.
type CompletedConfig struct {
	*Config
}

// Complete fills in any fields not set that are required to have valid data and can be derived
// from other fields.
func (c *Config) Complete() CompletedConfig {
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	return CompletedConfig{c}
}

// Address joins host and port into an address string.
func (c *Config) Address() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.BindPort))
}

// New returns a new instance of GenericAPIServer from the given config.
func (c CompletedConfig) New() (*GenericAPIServer, error) {
	gin.SetMode(c.Mode)

	s := &GenericAPIServer{
		Address:         c.Address(),
		healthz:         c.Healthz,
		enableProfiling: c.EnableProfiling,
		middlewares:     c.Middlewares,
		Engine:          gin.New(),
	}

	initGenericAPIServer(s)

	return s, nil
}
