package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

type ytdlpFormat struct {
	FormatID   string  `json:"format_id"`
	FormatNote string  `json:"format_note"`
	ACodec     string  `json:"acodec"`
	VCodec     string  `json:"vcodec"`
	Ext        string  `json:"ext"`
	URL        string  `json:"url"`
	ABR        float64 `json:"abr"`
	TBR        float64 `json:"tbr"`
	Height     int     `json:"height"`
}

type ytdlpInfo struct {
	Title     string        `json:"title"`
	Uploader  string        `json:"uploader"`
	Channel   string        `json:"channel"`
	Duration  float64       `json:"duration"`
	Thumbnail string        `json:"thumbnail"`
	Formats   []ytdlpFormat `json:"formats"`
}

// ytdlpSource shells out to yt-dlp and reads its single JSON dump.
type ytdlpSource struct {
	bin     string
	cookies string
	log     *zap.SugaredLogger
}

func newYTDLPSource(bin, cookies string, log *zap.SugaredLogger) *ytdlpSource {
	return &ytdlpSource{bin: bin, cookies: cookies, log: log}
}

func (s *ytdlpSource) Name() string {
	return SourceYTDLP
}

func (s *ytdlpSource) args(videoURL string) []string {
	args := []string{"-J", "--no-warnings", "--skip-download", "--no-playlist"}
	if s.cookies != "" {
		args = append(args, "--cookies", s.cookies)
	}
	return append(args, videoURL)
}

func (s *ytdlpSource) FetchVideoInfo(ctx context.Context, canonicalURL string) (*VideoInfo, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, s.bin, s.args(canonicalURL)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &RetrievalError{Source: SourceYTDLP, Err: fmt.Errorf("yt-dlp metadata error: %w | %s", err, strings.TrimSpace(stderr.String()))}
	}
	s.log.Debugw("yt-dlp finished", "url", canonicalURL, "elapsed", time.Since(start))
	return parseYTDLPInfo(stdout.Bytes())
}

func parseYTDLPInfo(data []byte) (*VideoInfo, error) {
	var raw ytdlpInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &RetrievalError{Source: SourceYTDLP, Err: fmt.Errorf("yt-dlp metadata parse error: %w", err)}
	}
	info := &VideoInfo{
		Title:           raw.Title,
		Author:          orDefault(raw.Uploader, raw.Channel),
		DurationSeconds: raw.Duration,
		ThumbnailURL:    raw.Thumbnail,
		Formats:         make([]FormatVariant, 0, len(raw.Formats)),
	}
	for _, f := range raw.Formats {
		if f.URL == "" {
			continue
		}
		v := FormatVariant{
			FormatID:  f.FormatID,
			Extension: f.Ext,
			HasAudio:  hasCodec(f.ACodec),
			HasVideo:  hasCodec(f.VCodec),
			Bitrate:   f.ABR,
			MediaURL:  f.URL,
		}
		if v.Bitrate == 0 {
			v.Bitrate = f.TBR
		}
		if v.HasVideo {
			v.QualityLabel = f.FormatNote
			if v.QualityLabel == "" && f.Height > 0 {
				v.QualityLabel = fmt.Sprintf("%dp", f.Height)
			}
		} else {
			v.AudioQuality = f.FormatNote
		}
		info.Formats = append(info.Formats, v)
	}
	return info, nil
}

// yt-dlp reports "none" for an absent track. An omitted codec means it could not tell, and
// the track is assumed present.
func hasCodec(codec string) bool {
	return codec != "none"
}

// Transcoder converts a remote audio stream into an MP3 file at outputPath.
type Transcoder interface {
	TranscodeToMP3(ctx context.Context, sourceURL, outputPath string) error
}

type ffmpegTranscoder struct {
	bin     string
	bitrate string
	log     *zap.SugaredLogger
}

func newFFmpegTranscoder(bin, bitrate string, log *zap.SugaredLogger) *ffmpegTranscoder {
	return &ffmpegTranscoder{bin: bin, bitrate: bitrate, log: log}
}

func (t *ffmpegTranscoder) TranscodeToMP3(ctx context.Context, sourceURL, outputPath string) error {
	start := time.Now()
	args := []string{
		"-y",
		"-loglevel", "error",
		"-nostdin",
		"-i", sourceURL,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "44100",
		"-b:a", t.bitrate,
		"-f", "mp3",
		outputPath,
	}
	cmd := exec.CommandContext(ctx, t.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w | %s", err, strings.TrimSpace(stderr.String()))
	}
	t.log.Debugw("ffmpeg conversion finished", "elapsed", time.Since(start))
	return nil
}
