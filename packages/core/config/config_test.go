package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30000, cfg.Timeout)
	assert.Equal(t, 5000, cfg.ScriptTimeout)
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
}

func TestGetters_NilDefaults(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
}

func TestLoad_ExplicitFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `defaultEnvironment: staging
timeout: 1500
validateSSL: false
headers:
  User-Agent: reqfile-test
sectionMarker: "==="
`
	require.NoError(t, afero.WriteFile(fs, "/w/.reqfile.yaml", []byte(content), 0o644))

	cfg, err := Load(fs, "/w/.reqfile.yaml")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.DefaultEnvironment)
	assert.Equal(t, 1500, cfg.Timeout)
	assert.False(t, cfg.GetValidateSSL())
	assert.True(t, cfg.GetFollowRedirects())
	assert.Equal(t, "===", cfg.SectionMarker)
	assert.Equal(t, 5000, cfg.ScriptTimeout)
	assert.Equal(t, "reqfile-test", cfg.Headers["user-agent"])
}

func TestLoad_JSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/.reqfile.json", []byte(`{"maxRedirects": 3, "noColor": true}`), 0o644))

	cfg, err := Load(fs, "/w/.reqfile.json")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRedirects)
	assert.True(t, cfg.GetNoColor())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope/.reqfile.yaml")
	assert.Error(t, err)
}

func TestLoad_SearchFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_SearchWorkingDirectory(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(cwd, ".reqfile.yaml"), []byte("historyFile: h.db\n"), 0o644))

	cfg, err := Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, "h.db", cfg.HistoryFile)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("REQFILE_TIMEOUT", "1234")
	t.Setenv("REQFILE_FOLLOWREDIRECTS", "false")

	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Timeout)
	assert.False(t, cfg.GetFollowRedirects())
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1"}

	other := &Config{
		DefaultEnvironment: "prod",
		Timeout:            10,
		ValidateSSL:        BoolPtr(false),
		Headers:            map[string]string{"B": "2"},
	}

	merged := base.Merge(other)
	assert.Equal(t, "prod", merged.DefaultEnvironment)
	assert.Equal(t, 10, merged.Timeout)
	assert.False(t, merged.GetValidateSSL())
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers)

	assert.Same(t, base, base.Merge(nil))
}

func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.DefaultEnvironment = "dev"
	require.NoError(t, cfg.Save(fs, "/w/.reqfile.yaml"))

	loaded, err := Load(fs, "/w/.reqfile.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
