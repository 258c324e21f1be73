package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiosk404/oracle/internal/oraclectl/client"
	"github.com/kiosk404/oracle/internal/oraclectl/cmd/util"
	"github.com/kiosk404/oracle/pkg/cli/genericclioptions"
	"github.com/kiosk404/oracle/pkg/cli/templates"
)

var chatExample = templates.Examples(`
		# Interactive chat on the default thread
		oraclectl chat

		# Single message mode
		oraclectl chat "What's the weather in Paris?"

		# Use a dedicated thread
		oraclectl chat --thread=trip-planning "Any news about the Louvre?"

		# Wait for the whole reply instead of streaming tool progress
		oraclectl chat --no-stream "Hello"`)

// ChatOptions is an options struct to support 'chat' sub command.
type ChatOptions struct {
	Thread        string
	MaxRoundTrips int
	NoStream      bool
	Raw           bool

	factory util.Factory
	client  *client.Client
	genericclioptions.IOStreams
}

// NewChatOptions returns an initialized ChatOptions instance.
func NewChatOptions(f util.Factory, ioStreams genericclioptions.IOStreams) *ChatOptions {
	return &ChatOptions{
		factory:   f,
		IOStreams: ioStreams,
	}
}

// NewCmdChat returns new initialized instance of 'chat' sub command.
func NewCmdChat(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewChatOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "chat [message]",
		DisableFlagsInUseLine: true,
		Short:                 "Chat with the oracle assistant",
		Long: templates.LongDesc(`
		Talk to the assistant through the oracle server.

		When invoked without arguments, start an interactive session that keeps the
		conversation on one thread. When invoked with a message, run a single turn
		and print the reply.`),
		Example: chatExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Complete(args))
			util.CheckErr(o.Validate())
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().StringVar(&o.Thread, "thread", o.Thread, "Thread to continue. Defaults to the server's default thread.")
	cmd.Flags().IntVar(&o.MaxRoundTrips, "max-round-trips", o.MaxRoundTrips, "Override the server's model round trip limit for each turn.")
	cmd.Flags().BoolVar(&o.NoStream, "no-stream", o.NoStream, "Wait for the whole reply instead of streaming tool progress.")
	cmd.Flags().BoolVar(&o.Raw, "raw", o.Raw, "Print replies without markdown rendering.")

	return cmd
}

// Complete fills in the fields not set by flags.
func (o *ChatOptions) Complete(args []string) error {
	o.client = o.factory.Client()
	o.Thread = strings.TrimSpace(o.Thread)
	return nil
}

// Validate checks the flag values.
func (o *ChatOptions) Validate() error {
	if o.MaxRoundTrips < 0 {
		return errors.New("--max-round-trips must not be negative")
	}
	return nil
}

// Run sends a single message, or starts the interactive session when args is empty.
func (o *ChatOptions) Run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		message := strings.TrimSpace(strings.Join(args, " "))
		if message == "" {
			return errors.New("message must not be empty")
		}
		return o.turn(ctx, message, newPlainProgress(o.ErrOut))
	}
	return o.runInteractive(ctx)
}

// turn runs one turn and prints the reply. Tool progress goes to p.
func (o *ChatOptions) turn(ctx context.Context, message string, p progress) error {
	req := &client.TurnRequest{
		Message:       message,
		ThreadID:      o.Thread,
		MaxRoundTrips: o.MaxRoundTrips,
	}

	if o.NoStream {
		resp, err := o.client.Turn(ctx, req)
		p.Stop()
		if err != nil {
			return err
		}
		o.pinThread(resp.ThreadID)
		for _, e := range resp.Messages {
			o.printReply(e.Content)
		}
		return nil
	}

	var (
		reply   string
		turnErr string
	)
	err := o.client.StreamTurn(ctx, req, func(ev *client.Event) {
		o.pinThread(ev.ThreadID)
		switch ev.Type {
		case "tool_call_start":
			if ev.ToolCall != nil {
				p.Status("calling " + ev.ToolCall.Name)
				p.Println(formatToolCall(ev.ToolCall))
			}
		case "tool_call_end":
			if ev.ToolResult != nil {
				p.Println(formatToolResult(ev.ToolResult))
			}
		case "message":
			reply = ev.Delta
		case "error":
			turnErr = ev.Error
		}
	})
	p.Stop()
	if err != nil {
		return err
	}
	if turnErr != "" {
		return fmt.Errorf("turn failed: %s", turnErr)
	}
	o.printReply(reply)
	return nil
}

// pinThread keeps later turns on the thread the server picked for the first one.
func (o *ChatOptions) pinThread(threadID string) {
	if o.Thread == "" {
		o.Thread = threadID
	}
}

func (o *ChatOptions) printReply(content string) {
	if content == "" {
		return
	}
	if o.Raw || !util.IsTerminal(o.Out) {
		fmt.Fprintln(o.Out, content)
		return
	}
	fmt.Fprintln(o.Out, renderMarkdown(content, util.TerminalWidth(o.Out)-4))
}

func formatToolCall(call *client.ToolCall) string {
	return fmt.Sprintf("-> %s %s", call.Name, call.Arguments)
}

func formatToolResult(res *client.ToolResult) string {
	if res.Error != nil {
		return fmt.Sprintf("<- %s failed (%s): %s", res.Name, res.Error.Kind, res.Error.Message)
	}
	return fmt.Sprintf("<- %s ok", res.Name)
}
