// Package templates normalizes cobra help text and groups subcommands.
package templates

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const indentation = `  `

// LongDesc normalizes a command's long description.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.TrimSpace(heredoc.Doc(s))
}

// Examples normalizes a command's examples and indents them.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}
	lines := strings.Split(strings.TrimSpace(heredoc.Doc(s)), "\n")
	for i, line := range lines {
		lines[i] = indentation + strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// CommandGroup is a titled set of subcommands.
type CommandGroup struct {
	Message  string
	Commands []*cobra.Command
}

// CommandGroups is an ordered list of command groups.
type CommandGroups []CommandGroup

// Add attaches every grouped command to parent.
func (g CommandGroups) Add(parent *cobra.Command) {
	for _, group := range g {
		parent.AddGroup(&cobra.Group{ID: groupID(group.Message), Title: group.Message})
		for _, c := range group.Commands {
			c.GroupID = groupID(group.Message)
			parent.AddCommand(c)
		}
	}
}

// Has reports whether c belongs to any group.
func (g CommandGroups) Has(c *cobra.Command) bool {
	for _, group := range g {
		for _, command := range group.Commands {
			if command == c {
				return true
			}
		}
	}
	return false
}

func groupID(message string) string {
	return strings.ToLower(strings.Trim(strings.ReplaceAll(message, " ", "-"), ":"))
}

// UsageError formats a usage error pointing at the command's help.
func UsageError(cmd *cobra.Command, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s\nSee '%s -h' for help and examples", msg, cmd.CommandPath())
}
