package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures the process-wide logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error, fatal.
	Level string `json:"level" mapstructure:"level"`
	// Format is "text" or "json".
	Format string `json:"format" mapstructure:"format"`
	// Output is "stdout", "stderr" or a file path.
	Output string `json:"output" mapstructure:"output"`
	// DisableColor turns off ANSI colors for the text formatter.
	DisableColor bool `json:"disable-color" mapstructure:"disable-color"`
}

// NewOptions returns the default logger options.
func NewOptions() *Options {
	return &Options{
		Level:  "info",
		Format: FormatText,
		Output: "stdout",
	}
}

// Validate checks the logger options.
func (o *Options) Validate() []error {
	var errs []error
	if _, err := logrus.ParseLevel(o.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if o.Format != FormatText && o.Format != FormatJSON {
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q", o.Format))
	}
	return errs
}

// AddFlags adds the logger flags to the given flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level (trace, debug, info, warn, error, fatal).")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log format: text or json.")
	fs.StringVar(&o.Output, "log.output", o.Output, "Log destination: stdout, stderr or a file path.")
	fs.BoolVar(&o.DisableColor, "log.disable-color", o.DisableColor, "Disable colored text output.")
}
