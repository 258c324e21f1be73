package posixsignal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/kiosk404/oracle/pkg/http/shutdown"
)

// Name defines shutdown manager name.
const Name = "PosixSignalManager"

// PosixSignalManager implements shutdown.Manager on top of os signals.
type PosixSignalManager struct {
	signals []os.Signal
}

// NewPosixSignalManager listens to SIGINT and SIGTERM unless other signals are given.
func NewPosixSignalManager(sig ...os.Signal) *PosixSignalManager {
	if len(sig) == 0 {
		sig = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	return &PosixSignalManager{signals: sig}
}

// GetName returns name of this manager.
func (m *PosixSignalManager) GetName() string {
	return Name
}

// Start starts listening for posix signals.
func (m *PosixSignalManager) Start(gs shutdown.GSInterface) error {
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, m.signals...)
		<-c
		gs.StartShutdown(m)
	}()
	return nil
}

// ShutdownStart does nothing.
func (m *PosixSignalManager) ShutdownStart() error {
	return nil
}

// ShutdownFinish exits the app with os.Exit(0).
func (m *PosixSignalManager) ShutdownFinish() error {
	os.Exit(0)
	return nil
}
