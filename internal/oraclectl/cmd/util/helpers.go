package util

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kiosk404/oracle/internal/oraclectl/client"
)

// DefaultErrorExitCode is the exit code used for any failed command.
const DefaultErrorExitCode = 1

var fatalErrHandler = fatal

// BehaviorOnFatal overrides how CheckErr reports a fatal error. Tests use it to avoid os.Exit.
func BehaviorOnFatal(f func(string, int)) {
	fatalErrHandler = f
}

// DefaultBehaviorOnFatal restores the os.Exit behavior of CheckErr.
func DefaultBehaviorOnFatal() {
	fatalErrHandler = fatal
}

func fatal(msg string, code int) {
	if len(msg) > 0 {
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		fmt.Fprint(os.Stderr, msg)
	}
	os.Exit(code)
}

// CheckErr prints a user friendly error and exits with a non-zero code.
func CheckErr(err error) {
	if err == nil {
		return
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fatalErrHandler(fmt.Sprintf("%s %s", color.RedString("Error from server:"), apiErr.Message), DefaultErrorExitCode)
		return
	}
	fatalErrHandler(fmt.Sprintf("%s %s", color.RedString("Error:"), err.Error()), DefaultErrorExitCode)
}
