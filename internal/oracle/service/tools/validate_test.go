package tools

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
)

func TestToolSpec_Validate(t *testing.T) {
	r, err := NewRegistry(&ToolSpec{
		Name: "t",
		Parameters: []ParameterDef{
			{Name: "location", Type: TypeString, Required: true, Pattern: `^[^,]+,[A-Z]{2}$`},
			{Name: "topic", Type: TypeString, Enum: []string{"general", "science"}, Default: "general"},
			{Name: "limit", Type: TypeInteger},
			{Name: "ratio", Type: TypeNumber},
			{Name: "verbose", Type: TypeBoolean},
			{Name: "tags", Type: TypeArray},
			{Name: "extra", Type: TypeObject},
		},
		Action: echoAction,
	})
	require.NoError(t, err)
	spec, _ := r.Lookup("t")

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{name: "minimal", args: map[string]any{"location": "Paris,FR"}},
		{name: "all types", args: map[string]any{
			"location": "Paris,FR", "topic": "science", "limit": float64(3), "ratio": 0.5,
			"verbose": true, "tags": []any{"a"}, "extra": map[string]any{"k": "v"},
		}},
		{name: "missing required", args: map[string]any{}, wantErr: `missing required argument "location"`},
		{name: "null required", args: map[string]any{"location": nil}, wantErr: `missing required argument "location"`},
		{name: "unknown argument", args: map[string]any{"location": "Paris,FR", "units": "metric"}, wantErr: `unknown argument "units"`},
		{name: "wrong type", args: map[string]any{"location": 42.0}, wantErr: `argument "location" must be string`},
		{name: "bad pattern", args: map[string]any{"location": "Paris"}, wantErr: "invalid format"},
		{name: "enum", args: map[string]any{"location": "Paris,FR", "topic": "sports"}, wantErr: "must be one of [general, science]"},
		{name: "non integral", args: map[string]any{"location": "Paris,FR", "limit": 1.5}, wantErr: "must be integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := spec.Validate(tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errno.ErrToolValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToolSpec_ValidateAppliesDefaults(t *testing.T) {
	r, err := NewRegistry(&ToolSpec{
		Name:       "news_tool",
		Parameters: []ParameterDef{{Name: "topic", Type: TypeString, Enum: []string{"general"}, Default: "general"}},
		Action:     echoAction,
	})
	require.NoError(t, err)
	spec, _ := r.Lookup("news_tool")

	args := map[string]any{}
	require.NoError(t, spec.Validate(args))
	assert.Equal(t, "general", args["topic"])
}

func TestToolSpec_ValidateNormalizes(t *testing.T) {
	r, err := NewRegistry(&ToolSpec{
		Name: "t",
		Parameters: []ParameterDef{{
			Name: "topic", Type: TypeString, Enum: []string{"general", "science"},
			Normalize: strings.ToLower,
		}},
		Action: echoAction,
	})
	require.NoError(t, err)
	spec, _ := r.Lookup("t")

	args := map[string]any{"topic": "Science"}
	require.NoError(t, spec.Validate(args))
	assert.Equal(t, "science", args["topic"])

	assert.Error(t, spec.Validate(map[string]any{"topic": "Sports"}))
}
