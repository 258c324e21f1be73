package version

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiosk404/oracle/internal/oraclectl/cmd/util"
	"github.com/kiosk404/oracle/pkg/cli/genericclioptions"
	"github.com/kiosk404/oracle/pkg/cli/templates"
	"github.com/kiosk404/oracle/pkg/version"
)

var versionExample = templates.Examples(`
		# Print the client and server versions
		oraclectl version

		# Print only the client version
		oraclectl version --client`)

// VersionOptions is an options struct to support 'version' sub command.
type VersionOptions struct {
	ClientOnly bool

	factory util.Factory
	genericclioptions.IOStreams
}

// NewVersionOptions returns an initialized VersionOptions instance.
func NewVersionOptions(f util.Factory, ioStreams genericclioptions.IOStreams) *VersionOptions {
	return &VersionOptions{factory: f, IOStreams: ioStreams}
}

// NewCmdVersion returns new initialized instance of 'version' sub command.
func NewCmdVersion(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewVersionOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the client and server version information",
		Example: versionExample,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&o.ClientOnly, "client", o.ClientOnly, "Print only the client version.")

	return cmd
}

// Run prints the client version and, unless ClientOnly is set, the server version.
func (o *VersionOptions) Run(ctx context.Context) error {
	text, err := version.Get().Text()
	if err != nil {
		return err
	}
	fmt.Fprintln(o.Out, "Client:")
	fmt.Fprintln(o.Out, string(text))
	if o.ClientOnly {
		return nil
	}

	info, err := o.factory.Client().Version(ctx)
	if err != nil {
		return fmt.Errorf("query server version: %w", err)
	}
	text, err = info.Text()
	if err != nil {
		return err
	}
	fmt.Fprintln(o.Out, "Server:")
	fmt.Fprintln(o.Out, string(text))
	return nil
}
