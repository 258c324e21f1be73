package app

import (
	"github.com/kiosk404/oracle/pkg/utils/cliflag"
)

// CliOptions abstracts configuration options for reading parameters from the command line.
type CliOptions interface {
	Flags() (fss cliflag.NamedFlagSets)
	Validate() []error
}

// CompleteableOptions abstracts options which can be completed.
type CompleteableOptions interface {
	Complete() error
}

// PrintableOptions abstracts options which can be printed.
type PrintableOptions interface {
	String() string
}
