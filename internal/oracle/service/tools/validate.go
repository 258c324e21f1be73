package tools

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

// Validate checks args against the tool's parameters and applies defaults in place.
// Returned errors wrap errno.ErrToolValidation.
func (s *ToolSpec) Validate(args map[string]any) error {
	if s.Schema != nil {
		return nil
	}

	declared := make(map[string]ParameterDef, len(s.Parameters))
	for _, p := range s.Parameters {
		declared[p.Name] = p
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := declared[k]; !ok {
			return fmt.Errorf("%w: unknown argument %q", errno.ErrToolValidation, k)
		}
	}

	for _, p := range s.Parameters {
		v, present := args[p.Name]
		if !present || v == nil {
			if p.Default != nil {
				args[p.Name] = p.Default
				continue
			}
			if p.Required {
				return fmt.Errorf("%w: missing required argument %q", errno.ErrToolValidation, p.Name)
			}
			delete(args, p.Name)
			continue
		}

		if str, ok := v.(string); ok && p.Normalize != nil {
			v = p.Normalize(str)
			args[p.Name] = v
		}
		if err := s.checkValue(p, v); err != nil {
			return fmt.Errorf("%w: argument %q %s", errno.ErrToolValidation, p.Name, err.Error())
		}
	}
	return nil
}

func (s *ToolSpec) checkValue(p ParameterDef, v any) error {
	if !matchesType(p.Type, v) {
		return fmt.Errorf("must be %s", p.Type)
	}

	str, isString := v.(string)
	if !isString {
		return nil
	}
	if len(p.Enum) > 0 && !contains(p.Enum, str) {
		return fmt.Errorf("must be one of [%s]", strings.Join(p.Enum, ", "))
	}
	if re, ok := s.patterns[p.Name]; ok && !re.MatchString(str) {
		return errors.New("has an invalid format")
	}
	return nil
}

func matchesType(t ParamType, v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := asFloat(v)
		return ok
	case TypeInteger:
		f, ok := asFloat(v)
		return ok && f == math.Trunc(f)
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
