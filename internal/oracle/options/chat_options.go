package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ChatOptions configures the turn loop.
type ChatOptions struct {
	MaxRoundTrips    int    `json:"max-round-trips"    mapstructure:"max-round-trips"`
	DefaultThreadID  string `json:"default-thread"     mapstructure:"default-thread"`
	SystemPrompt     string `json:"system-prompt"      mapstructure:"system-prompt"`
	SystemPromptFile string `json:"system-prompt-file" mapstructure:"system-prompt-file"`
	InlineErrors     bool   `json:"inline-errors"      mapstructure:"inline-errors"`
}

func NewChatOptions() *ChatOptions {
	return &ChatOptions{
		MaxRoundTrips:   10,
		DefaultThreadID: "demo-thread",
	}
}

func (o *ChatOptions) Validate() []error {
	var errs []error
	if o.MaxRoundTrips < 1 || o.MaxRoundTrips > 50 {
		errs = append(errs, fmt.Errorf("--chat.max-round-trips must be within [1, 50], got %d", o.MaxRoundTrips))
	}
	if o.DefaultThreadID == "" {
		errs = append(errs, fmt.Errorf("--chat.default-thread must not be empty"))
	}
	return errs
}

func (o *ChatOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.MaxRoundTrips, "chat.max-round-trips", o.MaxRoundTrips, "Maximum model invocations per turn.")
	fs.StringVar(&o.DefaultThreadID, "chat.default-thread", o.DefaultThreadID, "Thread used when a request names none.")
	fs.StringVar(&o.SystemPrompt, "chat.system-prompt", o.SystemPrompt, "System prompt sent with every model call.")
	fs.StringVar(&o.SystemPromptFile, "chat.system-prompt-file", o.SystemPromptFile, ""+
		"File holding the system prompt. It is reloaded when it changes and overrides --chat.system-prompt.")
	fs.BoolVar(&o.InlineErrors, "chat.inline-errors", o.InlineErrors, ""+
		"Answer failed turns with an 'Error: ...' assistant reply instead of an error response.")
}
