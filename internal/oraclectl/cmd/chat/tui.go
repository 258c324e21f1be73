package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/kiosk404/oracle/internal/oraclectl/client"
	"github.com/kiosk404/oracle/internal/oraclectl/cmd/util"
	"github.com/kiosk404/oracle/pkg/version"
)

var (
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// progress reports tool activity while a turn runs.
type progress interface {
	Status(label string)
	Println(line string)
	Stop()
}

// plainProgress writes tool activity as plain lines.
type plainProgress struct {
	w io.Writer
}

func newPlainProgress(w io.Writer) progress {
	return &plainProgress{w: w}
}

func (p *plainProgress) Status(string) {}

func (p *plainProgress) Println(line string) {
	fmt.Fprintln(p.w, line)
}

func (p *plainProgress) Stop() {}

type doneMsg struct{}

type statusMsg string

// thinkingModel renders a spinner with the current status until doneMsg arrives.
type thinkingModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func (m thinkingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m thinkingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case statusMsg:
		m.label = string(msg)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m thinkingModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + dimStyle.Render(m.label)
}

// spinnerProgress drives a bubbletea spinner on a terminal.
type spinnerProgress struct {
	program *tea.Program
	exited  chan struct{}
}

func newSpinnerProgress(out io.Writer) progress {
	model := thinkingModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		label:   "thinking...",
	}
	p := &spinnerProgress{
		program: tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil), tea.WithoutSignalHandler()),
		exited:  make(chan struct{}),
	}
	go func() {
		defer close(p.exited)
		_, _ = p.program.Run()
	}()
	return p
}

func (p *spinnerProgress) Status(label string) {
	p.program.Send(statusMsg(label))
}

func (p *spinnerProgress) Println(line string) {
	p.program.Println(dimStyle.Render(line))
}

func (p *spinnerProgress) Stop() {
	p.program.Send(doneMsg{})
	<-p.exited
}

// renderMarkdown renders content for terminal display, falling back to the raw text.
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = 76
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithColorProfile(termenv.ANSI256),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (o *ChatOptions) printWelcome() {
	w := util.TerminalWidth(o.Out)
	sep := accentStyle.Render(strings.Repeat("-", w))

	thread := o.Thread
	if thread == "" {
		thread = "(server default)"
	}

	fmt.Fprintln(o.Out, sep)
	fmt.Fprintln(o.Out, accentStyle.Render("Oracle Chat "+version.GitVersion))
	fmt.Fprintln(o.Out)
	fmt.Fprintf(o.Out, "  Server: %s\n", o.client.BaseURL)
	fmt.Fprintf(o.Out, "  Thread: %s\n", thread)
	fmt.Fprintln(o.Out)
	fmt.Fprintln(o.Out, accentStyle.Render("Tips:"))
	fmt.Fprintln(o.Out, "  Type a message and press Enter to send")
	fmt.Fprintln(o.Out, "  /clear  - delete the thread and start over")
	fmt.Fprintln(o.Out, "  /quit   - exit")
	fmt.Fprintln(o.Out, sep)
	fmt.Fprintln(o.Out)
}

// runInteractive reads messages line by line from In until EOF or /quit.
func (o *ChatOptions) runInteractive(ctx context.Context) error {
	interactive := stdinIsTerminal(o.In)
	tty := util.IsTerminal(o.Out)
	if interactive {
		o.printWelcome()
	}

	scanner := bufio.NewScanner(o.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if interactive {
			fmt.Fprint(o.Out, accentStyle.Render("> "))
		}
		if !scanner.Scan() {
			if interactive {
				fmt.Fprintln(o.Out, dimStyle.Render("\nGoodbye!"))
			}
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit":
			if interactive {
				fmt.Fprintln(o.Out, dimStyle.Render("Goodbye!"))
			}
			return nil
		case "/clear":
			if err := o.clear(ctx); err != nil {
				fmt.Fprintln(o.Out, errorStyle.Render("Error: "+err.Error()))
			} else {
				fmt.Fprintln(o.Out, dimStyle.Render("Conversation cleared."))
			}
			continue
		}

		if interactive {
			fmt.Fprintln(o.Out, assistantStyle.Render("oracle"))
		}

		var p progress
		if tty {
			p = newSpinnerProgress(o.Out)
		} else {
			p = newPlainProgress(o.Out)
		}
		if err := o.turn(ctx, input, p); err != nil {
			fmt.Fprintln(o.Out, errorStyle.Render("Error: "+err.Error()))
		}
		if interactive {
			fmt.Fprintln(o.Out)
		}
	}
}

// clear deletes the current thread. A thread that was never stored counts as cleared.
func (o *ChatOptions) clear(ctx context.Context) error {
	if o.Thread == "" {
		return nil
	}
	err := o.client.DeleteThread(ctx, o.Thread)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil
	}
	return err
}
