package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"scrape", "seed", "count", "serve", "runs"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "laras", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestScrapeCommand_Flags(t *testing.T) {
	for _, name := range []string{"sources", "out", "no-remote"} {
		require.NotNil(t, scrapeCmd.Flags().Lookup(name), "scrape command should have --%s flag", name)
	}
	assert.Equal(t, "false", scrapeCmd.Flags().Lookup("no-remote").DefValue)
}

func TestSeedCommand_Flags(t *testing.T) {
	require.NotNil(t, seedCmd.Flags().Lookup("file"))
	flag := seedCmd.Flags().Lookup("bulk")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunsCommand_Flags(t *testing.T) {
	flag := runsCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
	require.NotNil(t, runsCmd.Flags().Lookup("source"))
}
