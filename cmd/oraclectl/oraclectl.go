// oraclectl is the command line client of the oracle server.
package main

import (
	"os"

	"github.com/kiosk404/oracle/internal/oraclectl/cmd"
)

func main() {
	command := cmd.NewDefaultOracleCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
