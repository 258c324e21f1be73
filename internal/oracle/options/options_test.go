package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptions_Valid(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.Complete())
	assert.Empty(t, opts.Validate())
	assert.Equal(t, "demo-thread", opts.ChatOptions.DefaultThreadID)
	assert.Equal(t, 10, opts.ChatOptions.MaxRoundTrips)
	assert.Equal(t, 10*time.Second, opts.ToolsOptions.Timeout)
}

func TestValidate_Aggregates(t *testing.T) {
	opts := NewOptions()
	opts.ChatOptions.MaxRoundTrips = 51
	opts.StoreOptions.Type = "postgres"
	opts.ToolsOptions.Enabled = []string{"stock_tool"}
	opts.ToolsOptions.Timeout = 0

	errs := opts.Validate()
	assert.Len(t, errs, 4)
}

func TestStoreOptions_Retention(t *testing.T) {
	opts := NewStoreOptions()
	opts.IdleTTL = time.Hour
	assert.Len(t, opts.Validate(), 1)

	opts.SweepInterval = time.Minute
	assert.Empty(t, opts.Validate())
}

func TestString_HidesSecrets(t *testing.T) {
	opts := NewOptions()
	opts.AuthOptions.Token = "s3cret"
	opts.ToolsOptions.NewsAPIKey = "news-key"
	assert.NotContains(t, opts.String(), "s3cret")
	assert.NotContains(t, opts.String(), "news-key")
	assert.Contains(t, opts.String(), `"default-thread":"demo-thread"`)
}
