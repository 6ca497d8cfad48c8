package main

import (
	"flag"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, SourceYTDLP, cfg.Source)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = ""
	cfg.Source = "carrier-pigeon"
	cfg.MaxTranscodes = 0
	cfg.FetchTimeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 4)
}

func TestValidateRemoteNeedsURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourceRemote
	cfg.APIURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg.APIURL = "https://api.example.com/download/youtube"
	assert.NoError(t, cfg.Validate())
}

func TestValidateCacheTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisURL = "redis://localhost:6379/0"
	cfg.CacheTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestConfigFromFlags(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("INFO_SOURCE", "remote")

	app := &cli.App{Flags: configFlags()}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--max-transcodes", "2", "--fetch-timeout", "5s", "--transcode-audio"}))

	cfg := configFromContext(cli.NewContext(app, set, nil))
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SourceRemote, cfg.Source)
	assert.Equal(t, 2, cfg.MaxTranscodes)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.TranscodeAudio)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultAudioExtension, cfg.AudioExtension)
}
