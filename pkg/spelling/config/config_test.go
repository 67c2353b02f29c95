package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Limit)
	require.Equal(t, 2, cfg.MaxDistance)
	require.Equal(t, 4, cfg.PrefixLength)
	require.Equal(t, 3, cfg.TrigramWidth)
	require.Empty(t, cfg.Groups)
}

func TestLoadParsesGroupsAndOverridesPartialFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spelld.yaml")
	contents := `
max_distance: 1
groups:
  - prefix: title
  - prefix: subtitle
    alias_of: title
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.MaxDistance)
	require.Equal(t, 8, cfg.Limit, "unset field should fall back to default")
	require.Equal(t, []GroupAlias{{Prefix: "title"}, {Prefix: "subtitle", AliasOf: "title"}}, cfg.Groups)
}

func TestEnvOverridesTakePriorityOverFile(t *testing.T) {
	t.Setenv("SPELLD_MAX_DISTANCE", "0")
	t.Setenv("SPELLD_PREFIX_LENGTH", "6")

	path := filepath.Join(t.TempDir(), "spelld.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_distance: 1\nprefix_length: 5\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.MaxDistance)
	require.Equal(t, 6, cfg.PrefixLength)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
