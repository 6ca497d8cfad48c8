package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// librarySource extracts formats in-process with kkdai/youtube, no external binary.
type librarySource struct {
	client *youtube.Client
}

func newLibrarySource(hc *http.Client) *librarySource {
	return &librarySource{client: &youtube.Client{HTTPClient: hc}}
}

func (s *librarySource) Name() string {
	return SourceLibrary
}

func (s *librarySource) FetchVideoInfo(ctx context.Context, canonicalURL string) (*VideoInfo, error) {
	video, err := s.client.GetVideoContext(ctx, canonicalURL)
	if err != nil {
		return nil, &RetrievalError{Source: SourceLibrary, Err: fmt.Errorf("failed to get video info: %w", err)}
	}
	return convertVideo(video, func(f *youtube.Format) (string, error) {
		return s.client.GetStreamURLContext(ctx, video, f)
	}), nil
}

// convertVideo maps a library video onto VideoInfo. Ciphered formats carry no URL; resolve
// deciphers them, and formats it cannot resolve are dropped.
func convertVideo(video *youtube.Video, resolve func(*youtube.Format) (string, error)) *VideoInfo {
	info := &VideoInfo{
		Title:           video.Title,
		Author:          video.Author,
		DurationSeconds: video.Duration.Seconds(),
		Formats:         make([]FormatVariant, 0, len(video.Formats)),
	}
	if n := len(video.Thumbnails); n > 0 {
		info.ThumbnailURL = video.Thumbnails[n-1].URL
	}
	for i := range video.Formats {
		f := video.Formats[i]
		link := f.URL
		if link == "" {
			var err error
			if link, err = resolve(&f); err != nil || link == "" {
				continue
			}
		}
		major, ext := mimeExtension(f.MimeType)
		v := FormatVariant{
			FormatID:  fmt.Sprint(f.ItagNo),
			Extension: ext,
			HasAudio:  f.AudioChannels > 0,
			HasVideo:  major == "video",
			MediaURL:  link,
		}
		bitrate := f.AverageBitrate
		if bitrate == 0 {
			bitrate = f.Bitrate
		}
		v.Bitrate = float64(bitrate) / 1000
		if v.HasVideo {
			v.QualityLabel = f.QualityLabel
		} else {
			v.AudioQuality = strings.ToLower(strings.TrimPrefix(f.AudioQuality, "AUDIO_QUALITY_"))
		}
		info.Formats = append(info.Formats, v)
	}
	return info
}

// mimeExtension turns `audio/mp4; codecs="mp4a.40.2"` into ("audio", "m4a").
func mimeExtension(mimeType string) (string, string) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", ""
	}
	parts := strings.SplitN(mediaType, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	major, sub := strings.ToLower(parts[0]), strings.ToLower(parts[1])
	switch {
	case major == "audio" && sub == "mp4":
		return major, "m4a"
	case sub == "3gpp":
		return major, "3gp"
	default:
		return major, sub
	}
}
