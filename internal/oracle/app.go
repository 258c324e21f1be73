package oracle

import (
	"github.com/kiosk404/oracle/internal/oracle/config"
	"github.com/kiosk404/oracle/internal/oracle/options"
	"github.com/kiosk404/oracle/pkg/app"
	"github.com/kiosk404/oracle/pkg/logger"
)

const commandDesc = `The oracle server answers conversational turns with a tool-calling chat model.

Each turn may call the weather, dictionary and news lookup tools, plus any tools
exposed by configured MCP servers. Conversations are stored per thread and served
over an HTTP API.`

// NewApp creates an App object with default parameters.
func NewApp(basename string) *app.App {
	opts := options.NewOptions()
	application := app.NewApp("oracle",
		basename,
		app.WithOptions(opts),
		app.WithDescription(commandDesc),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)

	return application
}

func run(opts *options.Options) app.RunFunc {
	return func(basename string) error {
		if err := logger.Init(opts.Log); err != nil {
			return err
		}
		defer logger.Flush()

		cfg, err := config.CreateConfigFromOptions(opts)
		if err != nil {
			return err
		}

		return Run(cfg)
	}
}
