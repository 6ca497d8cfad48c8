package main

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ytdlpDump = `{
  "title": "Song",
  "uploader": "Artist",
  "duration": 212.5,
  "thumbnail": "https://i.ytimg.com/vi/x/maxres.jpg",
  "formats": [
    {"format_id": "sb0", "format_note": "storyboard", "acodec": "none", "vcodec": "none", "ext": "mhtml", "url": "https://sb"},
    {"format_id": "139", "format_note": "low", "acodec": "mp4a.40.5", "vcodec": "none", "ext": "m4a", "abr": 48.8, "url": "https://media/139"},
    {"format_id": "140", "format_note": "medium", "acodec": "mp4a.40.2", "vcodec": "none", "ext": "m4a", "abr": 129.5, "url": "https://media/140"},
    {"format_id": "18", "format_note": "360p", "acodec": "mp4a.40.2", "vcodec": "avc1.42001E", "ext": "mp4", "tbr": 500, "url": "https://media/18"},
    {"format_id": "137", "acodec": "none", "vcodec": "avc1.640028", "ext": "mp4", "height": 1080, "url": "https://media/137"},
    {"format_id": "nourl", "acodec": "opus", "vcodec": "none", "ext": "webm"}
  ]
}`

func TestParseYTDLPInfo(t *testing.T) {
	info, err := parseYTDLPInfo([]byte(ytdlpDump))
	require.NoError(t, err)

	assert.Equal(t, "Song", info.Title)
	assert.Equal(t, "Artist", info.Author)
	assert.Equal(t, 212.5, info.DurationSeconds)
	require.Len(t, info.Formats, 5)

	sb := info.Formats[0]
	assert.False(t, sb.HasAudio)
	assert.False(t, sb.HasVideo)

	audio := SelectAudio(info.Formats)
	require.NotNil(t, audio)
	assert.Equal(t, "140", audio.FormatID)
	assert.Equal(t, "medium", audio.AudioQuality)

	video := SelectVideo(info.Formats)
	require.NotNil(t, video)
	assert.Equal(t, "18", video.FormatID)
	assert.Equal(t, "360p", video.QualityLabel)
	assert.Equal(t, 500.0, video.Bitrate)

	assert.Equal(t, "1080p", info.Formats[4].QualityLabel)
}

func TestParseYTDLPInfoAuthorFallback(t *testing.T) {
	info, err := parseYTDLPInfo([]byte(`{"title": "x", "channel": "Chan", "formats": []}`))
	require.NoError(t, err)
	assert.Equal(t, "Chan", info.Author)
}

func TestParseYTDLPInfoOmittedCodec(t *testing.T) {
	info, err := parseYTDLPInfo([]byte(`{"title": "x", "formats": [
		{"format_id": "140", "vcodec": "none", "ext": "m4a", "abr": 129, "url": "https://media/140"},
		{"format_id": "hls", "ext": "mp4", "url": "https://media/hls"}
	]}`))
	require.NoError(t, err)
	require.Len(t, info.Formats, 2)

	assert.True(t, info.Formats[0].AudioOnly())
	assert.True(t, info.Formats[1].Muxed())
	assert.Equal(t, "140", SelectAudio(info.Formats).FormatID)
}

func TestParseYTDLPInfoInvalid(t *testing.T) {
	_, err := parseYTDLPInfo([]byte("ERROR: not json"))
	var re *RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, SourceYTDLP, re.Source)
}

func TestYTDLPArgs(t *testing.T) {
	s := newYTDLPSource("yt-dlp", "", zap.NewNop().Sugar())
	assert.Equal(t, []string{"-J", "--no-warnings", "--skip-download", "--no-playlist", "u"}, s.args("u"))

	s = newYTDLPSource("yt-dlp", "/etc/cookies.txt", zap.NewNop().Sugar())
	assert.Equal(t, []string{"-J", "--no-warnings", "--skip-download", "--no-playlist", "--cookies", "/etc/cookies.txt", "u"}, s.args("u"))
}

func TestYTDLPSourceMissingBinary(t *testing.T) {
	s := newYTDLPSource(filepath.Join(t.TempDir(), "no-such-yt-dlp"), "", zap.NewNop().Sugar())
	_, err := s.FetchVideoInfo(context.Background(), "https://www.youtube.com/watch?v=x")
	var re *RetrievalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusInternalServerError, statusFor(err))
}

func TestFFmpegTranscoderMissingBinary(t *testing.T) {
	tr := newFFmpegTranscoder(filepath.Join(t.TempDir(), "no-such-ffmpeg"), "192k", zap.NewNop().Sugar())
	err := tr.TranscodeToMP3(context.Background(), "https://media/140", filepath.Join(t.TempDir(), "out.mp3"))
	assert.Error(t, err)
}
