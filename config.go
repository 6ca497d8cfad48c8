package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
)

// Defaults
const (
	DefaultPort   = "3000"
	DefaultSource = SourceYTDLP
	DefaultAPIURL = "https://api.bk9.dev/download/youtube"

	DefaultYTDLPPath  = "yt-dlp"
	DefaultFFmpegPath = "ffmpeg"
	DefaultMP3Bitrate = "192k"

	// Concurrent ffmpeg processes
	DefaultMaxTranscodes = 4

	DefaultFetchTimeout     = 45 * time.Second
	DefaultTranscodeTimeout = 10 * time.Minute

	// Media URLs handed out by YouTube expire, keep cached info short-lived
	DefaultCacheTTL = 5 * time.Minute

	DefaultAudioExtension = "m4a"
)

const (
	SourceYTDLP   = "ytdlp"
	SourceLibrary = "library"
	SourceRemote  = "remote"
)

// Config is the process configuration, built once at startup and handed to the service.
type Config struct {
	Port   string
	Source string
	APIURL string

	YTDLPPath    string
	YTDLPCookies string
	FFmpegPath   string
	MP3Bitrate   string

	// TranscodeAudio makes type=audio answer with an MP3 stream instead of a link.
	TranscodeAudio bool
	MaxTranscodes  int
	TempDir        string

	FetchTimeout     time.Duration
	TranscodeTimeout time.Duration

	RedisURL string
	CacheTTL time.Duration

	AudioExtension string
	Brand          string
	Debug          bool
}

func DefaultConfig() Config {
	return Config{
		Port:             DefaultPort,
		Source:           DefaultSource,
		APIURL:           DefaultAPIURL,
		YTDLPPath:        DefaultYTDLPPath,
		FFmpegPath:       DefaultFFmpegPath,
		MP3Bitrate:       DefaultMP3Bitrate,
		MaxTranscodes:    DefaultMaxTranscodes,
		TempDir:          os.TempDir(),
		FetchTimeout:     DefaultFetchTimeout,
		TranscodeTimeout: DefaultTranscodeTimeout,
		CacheTTL:         DefaultCacheTTL,
		AudioExtension:   DefaultAudioExtension,
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var result error
	if c.Port == "" {
		result = multierror.Append(result, errors.New("port must not be empty"))
	}
	switch c.Source {
	case SourceYTDLP, SourceLibrary:
	case SourceRemote:
		if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
			result = multierror.Append(result, fmt.Errorf("invalid api url %q", c.APIURL))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown info source %q", c.Source))
	}
	if c.MaxTranscodes < 1 {
		result = multierror.Append(result, fmt.Errorf("max transcodes must be at least 1, got %d", c.MaxTranscodes))
	}
	if c.FetchTimeout <= 0 {
		result = multierror.Append(result, errors.New("fetch timeout must be positive"))
	}
	if c.TranscodeTimeout <= 0 {
		result = multierror.Append(result, errors.New("transcode timeout must be positive"))
	}
	if c.RedisURL != "" && c.CacheTTL <= 0 {
		result = multierror.Append(result, errors.New("cache ttl must be positive when redis is enabled"))
	}
	if c.TempDir == "" {
		result = multierror.Append(result, errors.New("temp dir must not be empty"))
	}
	return result
}

func configFlags() []cli.Flag {
	d := DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{Name: "port", Value: d.Port, EnvVars: []string{"PORT"}, Usage: "listen on `PORT`"},
		&cli.StringFlag{Name: "source", Value: d.Source, EnvVars: []string{"INFO_SOURCE"}, Usage: "video info backend: ytdlp, library or remote"},
		&cli.StringFlag{Name: "api-url", Value: d.APIURL, EnvVars: []string{"API_URL"}, Usage: "remote info API endpoint `URL`"},
		&cli.StringFlag{Name: "ytdlp-path", Value: d.YTDLPPath, EnvVars: []string{"YTDLP_PATH"}, Usage: "yt-dlp binary"},
		&cli.StringFlag{Name: "ytdlp-cookies", EnvVars: []string{"YTDLP_COOKIES"}, Usage: "cookies `FILE` passed to yt-dlp"},
		&cli.StringFlag{Name: "ffmpeg-path", Value: d.FFmpegPath, EnvVars: []string{"FFMPEG_PATH"}, Usage: "ffmpeg binary"},
		&cli.StringFlag{Name: "mp3-bitrate", Value: d.MP3Bitrate, EnvVars: []string{"MP3_BITRATE"}, Usage: "MP3 output bitrate"},
		&cli.BoolFlag{Name: "transcode-audio", EnvVars: []string{"TRANSCODE_AUDIO"}, Usage: "answer type=audio with an MP3 stream"},
		&cli.IntFlag{Name: "max-transcodes", Value: d.MaxTranscodes, EnvVars: []string{"MAX_TRANSCODES"}, Usage: "concurrent ffmpeg processes"},
		&cli.StringFlag{Name: "temp-dir", Value: d.TempDir, EnvVars: []string{"TEMP_DIR"}, Usage: "scratch `DIR` for MP3 files"},
		&cli.DurationFlag{Name: "fetch-timeout", Value: d.FetchTimeout, EnvVars: []string{"FETCH_TIMEOUT"}, Usage: "video info retrieval timeout"},
		&cli.DurationFlag{Name: "transcode-timeout", Value: d.TranscodeTimeout, EnvVars: []string{"TRANSCODE_TIMEOUT"}, Usage: "MP3 conversion timeout"},
		&cli.StringFlag{Name: "redis-url", EnvVars: []string{"REDIS_URL"}, Usage: "enable the video info cache at `URL`"},
		&cli.DurationFlag{Name: "cache-ttl", Value: d.CacheTTL, EnvVars: []string{"CACHE_TTL"}, Usage: "video info cache lifetime"},
		&cli.StringFlag{Name: "audio-ext", Value: d.AudioExtension, EnvVars: []string{"AUDIO_EXT"}, Usage: "extension listed under audios_m4a"},
		&cli.StringFlag{Name: "brand", EnvVars: []string{"BRAND"}, Usage: "value for the marca/fuente response fields"},
		&cli.BoolFlag{Name: "debug", EnvVars: []string{"DEBUG"}, Usage: "development logging"},
	}
}

func configFromContext(c *cli.Context) Config {
	return Config{
		Port:             c.String("port"),
		Source:           c.String("source"),
		APIURL:           c.String("api-url"),
		YTDLPPath:        c.String("ytdlp-path"),
		YTDLPCookies:     c.String("ytdlp-cookies"),
		FFmpegPath:       c.String("ffmpeg-path"),
		MP3Bitrate:       c.String("mp3-bitrate"),
		TranscodeAudio:   c.Bool("transcode-audio"),
		MaxTranscodes:    c.Int("max-transcodes"),
		TempDir:          c.String("temp-dir"),
		FetchTimeout:     c.Duration("fetch-timeout"),
		TranscodeTimeout: c.Duration("transcode-timeout"),
		RedisURL:         c.String("redis-url"),
		CacheTTL:         c.Duration("cache-ttl"),
		AudioExtension:   c.String("audio-ext"),
		Brand:            c.String("brand"),
		Debug:            c.Bool("debug"),
	}
}
