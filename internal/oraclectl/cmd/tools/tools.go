package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/oracle/internal/oraclectl/client"
	"github.com/kiosk404/oracle/internal/oraclectl/cmd/util"
	"github.com/kiosk404/oracle/pkg/cli/genericclioptions"
	"github.com/kiosk404/oracle/pkg/cli/templates"
)

var toolsExample = templates.Examples(`
		# List the tools the model can call
		oraclectl tools

		# Show every argument of every tool
		oraclectl tools --wide`)

// ToolsOptions is an options struct to support 'tools' sub command.
type ToolsOptions struct {
	Wide bool

	factory util.Factory
	genericclioptions.IOStreams
}

// NewToolsOptions returns an initialized ToolsOptions instance.
func NewToolsOptions(f util.Factory, ioStreams genericclioptions.IOStreams) *ToolsOptions {
	return &ToolsOptions{factory: f, IOStreams: ioStreams}
}

// NewCmdTools returns new initialized instance of 'tools' sub command.
func NewCmdTools(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewToolsOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "tools",
		DisableFlagsInUseLine: true,
		Short:                 "List the tools registered on the server",
		Long:                  "List the builtin and MCP tools the model may call during a turn.",
		Example:               toolsExample,
		Args:                  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&o.Wide, "wide", o.Wide, "Print each tool's arguments.")

	return cmd
}

// Run executes the tools sub command.
func (o *ToolsOptions) Run(ctx context.Context) error {
	tools, err := o.factory.Client().Tools(ctx)
	if err != nil {
		return err
	}
	if len(tools) == 0 {
		fmt.Fprintln(o.Out, "No tools registered.")
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow(color.New(color.Bold).Sprint("NAME"), color.New(color.Bold).Sprint("SOURCE"), color.New(color.Bold).Sprint("DESCRIPTION"))
	for _, t := range tools {
		table.AddRow(color.CyanString(t.Name), t.Source, t.Description)
		if !o.Wide {
			continue
		}
		for _, p := range t.Parameters {
			table.AddRow("", "", "  "+formatParameter(p))
		}
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func formatParameter(p client.Parameter) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(" (")
	b.WriteString(p.Type)
	if p.Required {
		b.WriteString(", required")
	}
	b.WriteString(")")
	if len(p.Enum) > 0 {
		b.WriteString(" one of " + strings.Join(p.Enum, "|"))
	}
	if p.Default != nil {
		b.WriteString(fmt.Sprintf(" default %v", p.Default))
	}
	return b.String()
}
