package version

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/oracle/internal/oraclectl/cmd/util"
	"github.com/kiosk404/oracle/pkg/cli/genericclioptions"
)

func TestRun(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/version", r.URL.Path)
		_, _ = io.WriteString(w, `{"gitVersion":"v1.2.3","platform":"linux/amd64"}`)
	}))
	defer ts.Close()

	streams, _, out, _ := genericclioptions.NewTestIOStreams()
	o := NewVersionOptions(util.NewFactory(&util.ClientConfig{Server: ts.URL}), streams)
	require.NoError(t, o.Run(context.Background()))

	assert.Contains(t, out.String(), "Client:")
	assert.Contains(t, out.String(), "Server:")
	assert.Contains(t, out.String(), "v1.2.3")
}

func TestRun_ClientOnly(t *testing.T) {
	streams, _, out, _ := genericclioptions.NewTestIOStreams()
	o := NewVersionOptions(util.NewFactory(&util.ClientConfig{Server: "http://127.0.0.1:1"}), streams)
	o.ClientOnly = true
	require.NoError(t, o.Run(context.Background()))

	assert.Contains(t, out.String(), "gitVersion:")
	assert.NotContains(t, out.String(), "Server:")
}
