package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
  name: test
contexts:
- context:
    cluster: test
    user: test
  name: test
current-context: test
users:
- name: test
  user: {}
`

func writeKubeconfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))
	return path
}

func TestBuildKubeClientExplicitPath(t *testing.T) {
	kc, config, err := BuildKubeClient(writeKubeconfig(t))
	require.NoError(t, err)
	assert.NotNil(t, kc)
	assert.Equal(t, "https://127.0.0.1:6443", config.Host)
}

func TestBuildKubeClientFromEnv(t *testing.T) {
	t.Setenv("KUBECONFIG", writeKubeconfig(t))

	kc, config, err := BuildKubeClient("")
	require.NoError(t, err)
	assert.NotNil(t, kc)
	assert.Equal(t, "https://127.0.0.1:6443", config.Host)
}

func TestBuildKubeClientInvalidPath(t *testing.T) {
	_, _, err := BuildKubeClient(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestGetKubeClientWithConfig(t *testing.T) {
	kc, _, err := GetKubeClientWithConfig(writeKubeconfig(t))
	require.NoError(t, err)
	assert.NotNil(t, kc)
}
