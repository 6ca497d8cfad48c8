package main

import "strings"

// fallbackVideoFormatID is YouTube's 360p mp4 with audio, present on almost every video.
const fallbackVideoFormatID = "18"

// SelectAudio picks the audio-only variant with the highest bitrate. Ties go to the
// first one seen.
func SelectAudio(formats []FormatVariant) *FormatVariant {
	var best *FormatVariant
	for i := range formats {
		f := &formats[i]
		if !f.AudioOnly() {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}

// SelectVideo picks the first muxed variant in encounter order. Some backends leave the
// track flags unset, so format 18 is accepted as a fallback unless it is reported as
// video-only.
func SelectVideo(formats []FormatVariant) *FormatVariant {
	for i := range formats {
		if formats[i].Muxed() {
			return &formats[i]
		}
	}
	for i := range formats {
		f := formats[i]
		if f.FormatID == fallbackVideoFormatID && !(f.HasVideo && !f.HasAudio) {
			return &formats[i]
		}
	}
	return nil
}

// AudioOptions lists the audio-only variants with the given extension, in encounter order.
func AudioOptions(formats []FormatVariant, ext string) []FormatVariant {
	out := make([]FormatVariant, 0, len(formats))
	for _, f := range formats {
		if f.AudioOnly() && strings.EqualFold(f.Extension, ext) {
			out = append(out, f)
		}
	}
	return out
}
