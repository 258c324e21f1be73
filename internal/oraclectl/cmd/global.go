package cmd

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/kiosk404/oracle/internal/oraclectl/client"
	"github.com/kiosk404/oracle/internal/oraclectl/cmd/util"
)

const (
	flagServer  = "server"
	flagToken   = "token"
	flagTimeout = "request-timeout"
)

func addGlobalFlags(flags *pflag.FlagSet, cfg *util.ClientConfig) {
	flags.StringVar(&cfg.Server, flagServer, util.DefaultServer,
		"Address of the oracle server.")
	flags.StringVar(&cfg.Token, flagToken, "",
		"Bearer token for the oracle server. Defaults to $"+client.TokenEnv+".")
	flags.DurationVar(&cfg.Timeout, flagTimeout, 120*time.Second,
		"Timeout of a single request to the server.")
}
