package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEndpoint_Defaults(t *testing.T) {
	ep, err := NewEndpoint(Target{Port: "9080"})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9080/converter/", ep.String())
}

func TestNewEndpoint_CustomTarget(t *testing.T) {
	ep, err := NewEndpoint(Target{Scheme: "https", Host: "example.com", Port: "8443", App: "/tools/"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com:8443/tools/", ep.String())
}

func TestNewEndpoint_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
		url  string
	}{
		{name: "missing", port: "", url: "http://localhost:/converter/"},
		{name: "not a number", port: "abc", url: "http://localhost:abc/converter/"},
		{name: "zero", port: "0", url: "http://localhost:0/converter/"},
		{name: "too large", port: "70000", url: "http://localhost:70000/converter/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEndpoint(Target{Port: tt.port})
			require.Error(t, err)

			assert.Equal(t, KindConfiguration, KindOf(err))
			assert.Contains(t, err.Error(), tt.url)
		})
	}
}

func TestNewEndpoint_UnsupportedScheme(t *testing.T) {
	_, err := NewEndpoint(Target{Scheme: "ftp", Port: "21"})
	require.Error(t, err)
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestEndpoint_Resolve(t *testing.T) {
	ep, err := NewEndpoint(Target{Port: "9080"})
	require.NoError(t, err)

	u, err := ep.Resolve("heights.jsp?heightCm=10")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9080/converter/heights.jsp?heightCm=10", u)

	u, err = ep.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9080/converter/", u)

	u, err = ep.Resolve("/heights.jsp")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9080/converter/heights.jsp", u)
}
