package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "ytdownload",
		Usage: "serve YouTube download links and MP3 conversions over HTTP",
		Flags: configFlags(),
		Action: func(c *cli.Context) error {
			cfg := configFromContext(c)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("can't initialize zap logger: %w", err)
			}
			defer logger.Sync()
			zap.RedirectStdLog(logger)
			return run(c.Context, cfg, logger.Sugar())
		},
		HideHelpCommand: true,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewProduction()
	}
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return config.Build()
}

func run(ctx context.Context, cfg Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}

	source, err := newVideoInfoSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	transcoder := newFFmpegTranscoder(cfg.FFmpegPath, cfg.MP3Bitrate, log.Named("ffmpeg"))
	svc := NewService(cfg, source, transcoder, log.Named("service"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           svc.Routes(),
		ReadHeaderTimeout: 15 * time.Second,
		// MP3 conversions answer slowly and stream large bodies
		WriteTimeout: cfg.FetchTimeout + cfg.TranscodeTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Infow("server listening",
		"addr", "http://localhost:"+cfg.Port,
		"source", source.Name(),
		"transcode_audio", cfg.TranscodeAudio,
		"max_transcodes", cfg.MaxTranscodes,
	)
	return serveUntilDone(ctx, srv, log)
}
