package helper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/pkg/options"
)

func TestResolveEnvValue(t *testing.T) {
	t.Setenv("ORACLE_TEST_KEY", "secret")

	assert.Equal(t, "secret", ResolveEnvValue("${ORACLE_TEST_KEY}"))
	assert.Equal(t, "", ResolveEnvValue("${ORACLE_TEST_UNSET}"))
	assert.Equal(t, "literal", ResolveEnvValue("literal"))
	assert.Equal(t, "${partial", ResolveEnvValue("${partial"))
}

func TestResolveConnection(t *testing.T) {
	t.Setenv("ORACLE_TEST_ENDPOINT", "https://example.openai.azure.com")

	defaults := &options.ProviderConfig{
		BaseURL:    "${ORACLE_TEST_ENDPOINT}",
		APIKey:     "${ORACLE_TEST_UNSET}",
		APIVersion: "2024-12-01-preview",
		Headers:    map[string]string{"X-A": "1"},
		Models:     []options.ModelDefinition{{ID: "default-model"}},
	}

	conn := ResolveConnection("azure", defaults, nil, "")
	assert.Equal(t, "azure", conn.Provider)
	assert.Equal(t, "https://example.openai.azure.com", conn.BaseURL)
	assert.Empty(t, conn.APIKey)
	assert.Equal(t, "2024-12-01-preview", conn.APIVersion)
	assert.Equal(t, "default-model", conn.Model)

	override := &options.ProviderConfig{
		APIKey:  "key",
		Headers: map[string]string{"X-B": "2"},
		Models:  []options.ModelDefinition{{ID: "override-model"}},
	}
	conn = ResolveConnection("azure", defaults, override, "")
	assert.Equal(t, "key", conn.APIKey)
	assert.Equal(t, "override-model", conn.Model)
	assert.Equal(t, map[string]string{"X-A": "1", "X-B": "2"}, conn.Headers)

	conn = ResolveConnection("azure", defaults, override, "pinned")
	assert.Equal(t, "pinned", conn.Model)

	// defaults are never mutated by a merge
	assert.Equal(t, map[string]string{"X-A": "1"}, defaults.Headers)
}

func TestHTTPClient(t *testing.T) {
	assert.Nil(t, HTTPClient(nil))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "team-a", r.Header.Get("X-Team"))
	}))
	defer srv.Close()

	resp, err := HTTPClient(map[string]string{"X-Team": "team-a"}).Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
}
