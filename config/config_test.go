package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "endfind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "http:\n  port: 8080\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Estimator.Sigma)
	assert.Equal(t, 1600, cfg.Estimator.SearchRadius)
	assert.Equal(t, 4, cfg.Estimator.GridResolution)
	assert.True(t, cfg.Estimator.UseClosest)
	assert.Equal(t, 2, cfg.Estimator.MinObservations)
	assert.Equal(t, 44333, cfg.UDP.Port)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `estimator:
  sigma: 0.5
  search_radius: 400
  grid_resolution: 2
  use_closest: false
  workers: 3
  seed: 99
relay:
  targets:
    - addr: 127.0.0.1:5555
      proto: udp
    - addr: 127.0.0.1:6666
      proto: TCP
`))
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Estimator.Sigma)
	assert.False(t, cfg.Estimator.UseClosest)
	assert.Len(t, cfg.Estimator.Options(), 2)
	p := cfg.Estimator.SearchParams()
	assert.Equal(t, 400, p.SearchRadius)
	assert.Equal(t, 2, p.GridResolution)
	require.Len(t, cfg.Relay.Targets, 2)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []string{
		"estimator:\n  sigma: 0\n",
		"estimator:\n  grid_resolution: -1\n",
		"estimator:\n  search_radius: 0\n",
		"estimator:\n  min_observations: 0\n",
		"udp:\n  port: 70000\n",
		"relay:\n  targets:\n    - addr: x:1\n      proto: sctp\n",
		"relay:\n  targets:\n    - proto: udp\n",
		"estimator: [",
	}
	for _, text := range cases {
		_, err := Load(writeConfig(t, text))
		assert.Error(t, err, "config %q", text)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
