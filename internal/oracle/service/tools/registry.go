package tools

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/cloudwego/eino/schema"
)

var (
	ErrToolNameEmpty = errors.New("tool name is empty")
	ErrDuplicateTool = errors.New("tool already registered")
	ErrNilAction     = errors.New("tool action is nil")
)

// Registry is the fixed set of tools available to the model.
// It is built once at startup; there is no runtime registration or removal.
type Registry struct {
	specs []*ToolSpec
	index map[string]*ToolSpec
}

// NewRegistry validates and freezes specs in the given order.
func NewRegistry(specs ...*ToolSpec) (*Registry, error) {
	r := &Registry{
		specs: make([]*ToolSpec, 0, len(specs)),
		index: make(map[string]*ToolSpec, len(specs)),
	}

	for _, in := range specs {
		if in == nil || in.Name == "" {
			return nil, ErrToolNameEmpty
		}
		if _, ok := r.index[in.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, in.Name)
		}
		if in.Action == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilAction, in.Name)
		}

		spec := *in
		spec.Parameters = append([]ParameterDef(nil), in.Parameters...)
		spec.patterns = make(map[string]*regexp.Regexp)
		for _, p := range spec.Parameters {
			if p.Name == "" {
				return nil, fmt.Errorf("tool %q: parameter without a name", spec.Name)
			}
			if p.Pattern == "" {
				continue
			}
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("tool %q: parameter %q: %w", spec.Name, p.Name, err)
			}
			spec.patterns[p.Name] = re
		}

		r.specs = append(r.specs, &spec)
		r.index[spec.Name] = &spec
	}
	return r, nil
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (*ToolSpec, bool) {
	spec, ok := r.index[name]
	return spec, ok
}

// Specs returns the registered specs in registration order.
func (r *Registry) Specs() []*ToolSpec {
	return append([]*ToolSpec(nil), r.specs...)
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for _, s := range r.specs {
		names = append(names, s.Name)
	}
	return names
}

// ToolInfos returns the schemas advertised to the chat model.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.specs))
	for _, s := range r.specs {
		infos = append(infos, s.Info())
	}
	return infos
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.specs)
}
