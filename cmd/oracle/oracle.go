// oracle runs the conversational assistant server.
package main

import (
	"math/rand"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/oracle/internal/oracle"
)

func main() {
	rand.New(rand.NewSource(time.Now().UTC().UnixNano()))

	oracle.NewApp("oracle").Run()
}
