package threads

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"

	"github.com/kiosk404/oracle/internal/oraclectl/client"
	"github.com/kiosk404/oracle/internal/oraclectl/cmd/util"
	"github.com/kiosk404/oracle/pkg/cli/genericclioptions"
	"github.com/kiosk404/oracle/pkg/cli/templates"
)

var threadsExample = templates.Examples(`
		# List stored threads
		oraclectl threads list

		# Print the messages of a thread
		oraclectl threads show demo-thread

		# Delete a thread
		oraclectl threads delete demo-thread`)

// ThreadsOptions is an options struct to support 'threads' sub commands.
type ThreadsOptions struct {
	factory util.Factory
	genericclioptions.IOStreams
}

// NewThreadsOptions returns an initialized ThreadsOptions instance.
func NewThreadsOptions(f util.Factory, ioStreams genericclioptions.IOStreams) *ThreadsOptions {
	return &ThreadsOptions{factory: f, IOStreams: ioStreams}
}

// NewCmdThreads returns the 'threads' command with its list, show and delete children.
func NewCmdThreads(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewThreadsOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "threads",
		DisableFlagsInUseLine: true,
		Short:                 "Inspect and delete conversation threads",
		Long:                  "Inspect and delete the conversation threads stored by the server.",
		Example:               threadsExample,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored threads",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.List(cmd.Context()))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show THREAD_ID",
		Short: "Print the messages of a thread",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				util.CheckErr(templates.UsageError(cmd, "exactly one THREAD_ID is required"))
				return
			}
			util.CheckErr(o.Show(cmd.Context(), args[0]))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "delete THREAD_ID",
		Aliases: []string{"rm"},
		Short:   "Delete a thread",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				util.CheckErr(templates.UsageError(cmd, "exactly one THREAD_ID is required"))
				return
			}
			util.CheckErr(o.Delete(cmd.Context(), args[0]))
		},
	})

	return cmd
}

// List prints every stored thread.
func (o *ThreadsOptions) List(ctx context.Context) error {
	threads, err := o.factory.Client().Threads(ctx)
	if err != nil {
		return err
	}
	if len(threads) == 0 {
		fmt.Fprintln(o.Out, "No threads found.")
		return nil
	}

	table := uitable.New()
	table.AddRow("THREAD", "MESSAGES", "CREATED", "UPDATED")
	for _, t := range threads {
		table.AddRow(t.ThreadID, t.MessageCount, t.CreatedAt, t.UpdatedAt)
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

// Show prints the stored messages of a thread.
func (o *ThreadsOptions) Show(ctx context.Context, threadID string) error {
	msgs, err := o.factory.Client().Messages(ctx, threadID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintf(o.Out, "Thread %s has no messages.\n", threadID)
		return nil
	}

	width := uint(util.TerminalWidth(o.Out) - 4)
	for _, m := range msgs {
		fmt.Fprintln(o.Out, roleLabel(m))
		for _, call := range m.ToolCalls {
			fmt.Fprintf(o.Out, "  -> %s(%s) [%s]\n", call.Name, call.Arguments, call.ID)
		}
		if m.Content != "" {
			fmt.Fprintln(o.Out, indent(wordwrap.WrapString(m.Content, width)))
		}
		if m.Error != nil {
			fmt.Fprintf(o.Out, "  %s %s\n", color.RedString(m.Error.Kind+":"), m.Error.Message)
		}
	}
	return nil
}

// Delete removes a thread.
func (o *ThreadsOptions) Delete(ctx context.Context, threadID string) error {
	if err := o.factory.Client().DeleteThread(ctx, threadID); err != nil {
		return err
	}
	fmt.Fprintf(o.Out, "thread %q deleted\n", threadID)
	return nil
}

func roleLabel(m client.Message) string {
	switch m.Role {
	case "user":
		return color.New(color.Bold, color.FgBlue).Sprint("user")
	case "assistant":
		return color.New(color.Bold, color.FgMagenta).Sprint("assistant")
	case "tool":
		return color.New(color.Bold, color.FgYellow).Sprintf("tool %s [%s]", m.Name, m.ToolCallID)
	default:
		return color.New(color.Faint).Sprint(m.Role)
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
