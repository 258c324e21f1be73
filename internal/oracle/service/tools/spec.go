package tools

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
)

// Action is the opaque external call behind a tool. It returns human-readable text.
type Action func(ctx context.Context, args map[string]any) (string, error)

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
	TypeArray   ParamType = "array"
)

// ParameterDef declares one named argument of a tool.
type ParameterDef struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Enum restricts string values.
	Enum []string
	// Default is applied when the argument is absent.
	Default any
	// Pattern is a regular expression string values must match.
	Pattern string
	// Normalize rewrites a string value before it is checked.
	Normalize func(string) string
}

// ToolSpec is the static descriptor of a tool. Specs are frozen by NewRegistry.
type ToolSpec struct {
	Name string
	// Description is the usage contract the model reads when choosing tools.
	Description string
	Parameters  []ParameterDef
	// ErrorMarker prefixes failure text, e.g. WEATHER_ERROR. Derived from Name when empty.
	ErrorMarker string
	// Timeout overrides the executor's per-call timeout.
	Timeout time.Duration
	Action  Action

	// Schema, when set, is advertised to the model as is and argument checks are limited
	// to decoding a JSON object. Used for tools discovered over MCP.
	Schema *schema.ToolInfo

	patterns map[string]*regexp.Regexp
}

// Marker returns the error marker of the tool.
func (s *ToolSpec) Marker() string {
	if s.ErrorMarker != "" {
		return s.ErrorMarker
	}
	return DefaultMarker(s.Name)
}

// DefaultMarker derives NAME_ERROR from a tool name, dropping a trailing _tool.
func DefaultMarker(name string) string {
	base := strings.TrimSuffix(name, "_tool")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, base)
	return base + "_ERROR"
}

// Info converts the spec into the eino tool schema bound to the chat model.
func (s *ToolSpec) Info() *schema.ToolInfo {
	if s.Schema != nil {
		info := *s.Schema
		info.Name = s.Name
		return &info
	}

	params := make(map[string]*schema.ParameterInfo, len(s.Parameters))
	for _, p := range s.Parameters {
		params[p.Name] = &schema.ParameterInfo{
			Type:     toSchemaDataType(p.Type),
			Desc:     p.Description,
			Enum:     p.Enum,
			Required: p.Required,
		}
	}

	return &schema.ToolInfo{
		Name:        s.Name,
		Desc:        s.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

func toSchemaDataType(t ParamType) schema.DataType {
	switch t {
	case TypeString:
		return schema.String
	case TypeNumber:
		return schema.Number
	case TypeInteger:
		return schema.Integer
	case TypeBoolean:
		return schema.Boolean
	case TypeObject:
		return schema.Object
	case TypeArray:
		return schema.Array
	default:
		return schema.String
	}
}
