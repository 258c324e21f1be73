package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiosk404/oracle/internal/oraclectl/cmd/chat"
	"github.com/kiosk404/oracle/internal/oraclectl/cmd/threads"
	"github.com/kiosk404/oracle/internal/oraclectl/cmd/tools"
	cmdutil "github.com/kiosk404/oracle/internal/oraclectl/cmd/util"
	"github.com/kiosk404/oracle/internal/oraclectl/cmd/version"
	"github.com/kiosk404/oracle/pkg/cli/genericclioptions"
	"github.com/kiosk404/oracle/pkg/cli/templates"
	"github.com/kiosk404/oracle/pkg/utils/cliflag"
)

// NewDefaultOracleCtlCommand creates the `oraclectl` command with default arguments.
func NewDefaultOracleCtlCommand() *cobra.Command {
	return NewOracleCtlCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewOracleCtlCommand creates the `oraclectl` command with the given streams.
// Connection flags may also come from ORACLECTL_SERVER, ORACLECTL_TOKEN and
// ORACLECTL_REQUEST_TIMEOUT.
func NewOracleCtlCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	cfg := &cmdutil.ClientConfig{}
	v := viper.New()

	// Parent command to which all subcommands are added.
	cmds := &cobra.Command{
		Use:   "oraclectl",
		Short: "oraclectl talks to an oracle server",
		Long: templates.LongDesc(fmt.Sprintf(`%s
		oraclectl is the command line client of the oracle assistant.

		It runs conversation turns against the server, either one message at a time
		or as an interactive session, and lets you inspect the registered tools and
		the stored conversation threads.`, Banner())),
		Run: runHelp,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg.Server = v.GetString(flagServer)
			cfg.Token = v.GetString(flagToken)
			cfg.Timeout = v.GetDuration(flagTimeout)
			return nil
		},
		SilenceUsage: true,
	}
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(err)

	flags := cmds.PersistentFlags()
	// Normalize all flags that are coming from other packages or pre-configurations
	flags.SetNormalizeFunc(cliflag.WordSepNormalizeFunc)
	addGlobalFlags(flags, cfg)

	v.SetEnvPrefix("ORACLECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	// From this point and forward we get warnings on flags that contain "_" separators
	cmds.SetGlobalNormalizationFunc(cliflag.WarnWordSepNormalizeFunc)

	ioStreams := genericclioptions.IOStreams{In: in, Out: out, ErrOut: err}
	f := cmdutil.NewFactory(cfg)

	groups := templates.CommandGroups{
		{
			Message: "Conversation Commands:",
			Commands: []*cobra.Command{
				chat.NewCmdChat(f, ioStreams),
				threads.NewCmdThreads(f, ioStreams),
			},
		},
		{
			Message: "Inspection Commands:",
			Commands: []*cobra.Command{
				tools.NewCmdTools(f, ioStreams),
				version.NewCmdVersion(f, ioStreams),
			},
		},
	}
	groups.Add(cmds)

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
