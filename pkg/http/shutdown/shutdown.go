// Package shutdown coordinates graceful shutdown between shutdown managers
// (signal sources) and shutdown callbacks (resources to release).
package shutdown

import (
	"sync"
)

// Callback is notified when a shutdown is triggered.
type Callback interface {
	OnShutdown(string) error
}

// Func is a helper type to provide an anonymous function as a Callback.
type Func func(string) error

// OnShutdown calls f.
func (f Func) OnShutdown(name string) error {
	return f(name)
}

// Manager watches a source of shutdown requests.
type Manager interface {
	GetName() string
	Start(gs GSInterface) error
	ShutdownStart() error
	ShutdownFinish() error
}

// ErrorHandler receives errors raised by managers or callbacks.
type ErrorHandler interface {
	OnError(err error)
}

// ErrorFunc is a helper type for an anonymous ErrorHandler.
type ErrorFunc func(err error)

// OnError calls f.
func (f ErrorFunc) OnError(err error) {
	f(err)
}

// GSInterface is what managers see of the GracefulShutdown.
type GSInterface interface {
	StartShutdown(sm Manager)
	ReportError(err error)
	AddShutdownCallback(cb Callback)
}

// GracefulShutdown is the main structure that handles managers and callbacks.
type GracefulShutdown struct {
	mu           sync.Mutex
	callbacks    []Callback
	managers     []Manager
	errorHandler ErrorHandler
}

// New initializes GracefulShutdown.
func New() *GracefulShutdown {
	return &GracefulShutdown{}
}

// Start calls Start on all added managers.
func (gs *GracefulShutdown) Start() error {
	for _, manager := range gs.managers {
		if err := manager.Start(gs); err != nil {
			return err
		}
	}
	return nil
}

// AddShutdownManager adds a manager that will listen to shutdown requests.
func (gs *GracefulShutdown) AddShutdownManager(manager Manager) {
	gs.managers = append(gs.managers, manager)
}

// AddShutdownCallback adds a callback that will be called when a shutdown is requested.
func (gs *GracefulShutdown) AddShutdownCallback(cb Callback) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.callbacks = append(gs.callbacks, cb)
}

// SetErrorHandler sets an error handler that will be called when an error is
// encountered in a callback or manager.
func (gs *GracefulShutdown) SetErrorHandler(errorHandler ErrorHandler) {
	gs.errorHandler = errorHandler
}

// StartShutdown runs ShutdownStart on the manager, every callback in parallel,
// then ShutdownFinish.
func (gs *GracefulShutdown) StartShutdown(sm Manager) {
	gs.ReportError(sm.ShutdownStart())

	gs.mu.Lock()
	callbacks := append([]Callback(nil), gs.callbacks...)
	gs.mu.Unlock()

	var wg sync.WaitGroup
	for _, cb := range callbacks {
		wg.Add(1)
		go func(cb Callback) {
			defer wg.Done()
			gs.ReportError(cb.OnShutdown(sm.GetName()))
		}(cb)
	}
	wg.Wait()

	gs.ReportError(sm.ShutdownFinish())
}

// ReportError forwards err to the error handler, if any.
func (gs *GracefulShutdown) ReportError(err error) {
	if err != nil && gs.errorHandler != nil {
		gs.errorHandler.OnError(err)
	}
}
