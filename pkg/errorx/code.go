package errorx

import (
	"fmt"
	"net/http"
	"sync"
)

// Coder describes a registered error code.
type Coder interface {
	// HTTPStatus is the status written to HTTP clients.
	HTTPStatus() int
	// String is the user-facing message.
	String() string
	// Reference points to documentation for the code.
	Reference() string
	// Code is the integer error code.
	Code() int
}

// ErrUnknown is the code used for errors that carry no registered code.
const ErrUnknown = 1

type defaultCoder struct {
	C    int
	HTTP int
	Ext  string
	Ref  string
}

func (c defaultCoder) Code() int         { return c.C }
func (c defaultCoder) String() string    { return c.Ext }
func (c defaultCoder) Reference() string { return c.Ref }
func (c defaultCoder) HTTPStatus() int {
	if c.HTTP == 0 {
		return http.StatusInternalServerError
	}
	return c.HTTP
}

var (
	unknownCoder = defaultCoder{C: ErrUnknown, HTTP: http.StatusInternalServerError, Ext: "An internal server error occurred"}

	codeMux sync.RWMutex
	codes   = map[int]Coder{}
)

// Register registers a coder, replacing any previous coder with the same code.
func Register(coder Coder) {
	if coder.Code() == ErrUnknown {
		panic(fmt.Sprintf("code %d is reserved", ErrUnknown))
	}
	codeMux.Lock()
	defer codeMux.Unlock()
	codes[coder.Code()] = coder
}

// MustRegister registers a coder and panics if the code is already taken.
func MustRegister(coder Coder) {
	if coder.Code() == ErrUnknown {
		panic(fmt.Sprintf("code %d is reserved", ErrUnknown))
	}
	codeMux.Lock()
	defer codeMux.Unlock()
	if _, ok := codes[coder.Code()]; ok {
		panic(fmt.Sprintf("code %d already exists", coder.Code()))
	}
	codes[coder.Code()] = coder
}

// ParseCoder returns the coder attached to err, or the unknown coder.
func ParseCoder(err error) Coder {
	if err == nil {
		return nil
	}
	var c *withCode
	if As(err, &c) {
		codeMux.RLock()
		defer codeMux.RUnlock()
		if coder, ok := codes[c.code]; ok {
			return coder
		}
	}
	return unknownCoder
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code int) bool {
	for err != nil {
		if c, ok := err.(*withCode); ok && c.code == code {
			return true
		}
		err = Unwrap(err)
	}
	return false
}
