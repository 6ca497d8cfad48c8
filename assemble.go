package main

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	unknownAuthor       = "Desconocido"
	unknownBitrate      = "N/A"
	unknownBitrateText  = "desconocida"
	defaultVideoQuality = "360p"
	defaultVideoExt     = "mp4"
	defaultAudioExt     = "m4a"
)

// AssembleDownload builds the default payload: metadata, the preferred muxed format and
// every listed audio option.
func AssembleDownload(info *VideoInfo, audios []FormatVariant, video *FormatVariant, canonicalURL, brand string) downloadResponse {
	summary := &videoSummary{
		Title:       info.Title,
		Author:      orDefault(info.Author, unknownAuthor),
		Duration:    info.DurationSeconds,
		Thumbnail:   info.ThumbnailURL,
		OriginalURL: canonicalURL,
		Audios:      make([]audioFormat, 0, len(audios)),
	}
	if video != nil {
		summary.VideoFormat = &videoFormat{
			Quality:   videoQuality(*video),
			Extension: orDefault(video.Extension, defaultVideoExt),
			Link:      video.MediaURL,
		}
	}
	for _, a := range audios {
		summary.Audios = append(summary.Audios, audioFormat{
			Quality:   audioQuality(a),
			Bitrate:   bitrateValue(a),
			Extension: orDefault(a.Extension, defaultAudioExt),
			Link:      a.MediaURL,
			FormatID:  a.FormatID,
		})
	}
	return downloadResponse{
		Status: true,
		Brand:  brand,
		Origin: brand,
		Video:  summary,
	}
}

func AssembleVideoLink(video FormatVariant) linkResponse {
	return linkResponse{
		Status:    true,
		Kind:      "video",
		Link:      video.MediaURL,
		Extension: orDefault(video.Extension, defaultVideoExt),
		Quality:   videoQuality(video),
	}
}

func AssembleAudioLink(audio FormatVariant) linkResponse {
	return linkResponse{
		Status:    true,
		Kind:      "audio",
		Link:      audio.MediaURL,
		Extension: orDefault(audio.Extension, defaultAudioExt),
		Quality:   audioQuality(audio),
		Bitrate:   bitrateValue(audio),
		FormatID:  audio.FormatID,
	}
}

func videoQuality(f FormatVariant) string {
	if f.Quality != "" {
		return f.Quality
	}
	return orDefault(f.QualityLabel, defaultVideoQuality)
}

// audioQuality prefers the backend's own label, otherwise "<bitrate> - <audio quality>".
func audioQuality(f FormatVariant) string {
	if f.Quality != "" {
		return f.Quality
	}
	rate := unknownBitrateText
	switch {
	case f.BitrateText != "":
		rate = f.BitrateText
	case f.Bitrate > 0:
		rate = formatKbps(f.Bitrate)
	}
	return fmt.Sprintf("%s - %s", rate, orDefault(strings.TrimSpace(f.AudioQuality), "audio"))
}

func bitrateValue(f FormatVariant) any {
	if f.BitrateText != "" {
		return f.BitrateText
	}
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return unknownBitrate
}

func formatKbps(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
