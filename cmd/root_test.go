package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhubert/messly/internal/config"
)

func TestDebugFlagDefaultTrue(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, flag, "--debug flag not found")
	assert.Equal(t, "true", flag.DefValue)
}

func TestQuietFlagExists(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, flag, "--quiet flag not found")
	assert.Equal(t, "false", flag.DefValue)
	assert.Equal(t, "q", flag.Shorthand)
}

func TestConnectionFlags(t *testing.T) {
	for _, name := range []string{"server", "log-file"} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "--%s flag not found", name)
		assert.Empty(t, flag.DefValue)
	}
	assert.NotNil(t, rootCmd.Flags().Lookup("metrics-addr"))
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"login", "logout", "clean"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestVersionTemplate(t *testing.T) {
	origV, origC, origD := version, commit, date
	defer SetVersionInfo(origV, origC, origD)

	SetVersionInfo("1.2.3", "none", "unknown")
	assert.Equal(t, "messly 1.2.3\n", versionTemplate())

	SetVersionInfo("1.2.3", "abc123", "2026-01-02")
	assert.Equal(t, "messly 1.2.3\n  commit: abc123\n  built:  2026-01-02\n", versionTemplate())
}

func TestInitConfig_QuietOverridesDebug(t *testing.T) {
	origDebug, origQuiet := debugMode, quietMode
	defer func() { debugMode, quietMode = origDebug, origQuiet }()

	debugMode = true
	quietMode = true

	// Should not panic - quiet should take precedence
	initConfig()
}

func TestLoadConfig_ServerFlagOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MESSLY_SERVER_URL", "")
	orig := serverURL
	defer func() { serverURL = orig }()

	serverURL = "https://chat.example.com"
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", cfg.GetServerURL())

	serverURL = ""
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultServerURL, cfg.GetServerURL())
}

func TestLoadConfig_InvalidServerFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MESSLY_SERVER_URL", "")
	orig := serverURL
	defer func() { serverURL = orig }()

	serverURL = "not a url"
	_, err := loadConfig()
	assert.Error(t, err)
}
