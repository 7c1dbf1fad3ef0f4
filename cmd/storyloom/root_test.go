package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_VersionAndFlags(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"--backend", "sqlite", "--max-slots", "7", "--log-format", "json", "version"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "storyloom version ")
	require.NotNil(t, app)
	assert.Equal(t, "sqlite", app.Config.Backend)
	assert.Equal(t, 7, app.Config.MaxSlots)
	assert.Equal(t, "json", app.Config.LogFormat)

	rootCmd.SetArgs([]string{"--log-level", "trace", "version"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}
