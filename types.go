package main

import "time"

// FormatVariant is one downloadable encoding reported by an info source.
type FormatVariant struct {
	FormatID     string  `json:"format_id"`
	Extension    string  `json:"ext"`
	HasAudio     bool    `json:"has_audio"`
	HasVideo     bool    `json:"has_video"`
	Bitrate      float64 `json:"bitrate"`                // kbps, 0 when unknown
	BitrateText  string  `json:"bitrate_text,omitempty"` // as the backend wrote it, e.g. "129kbps"
	Quality      string  `json:"quality,omitempty"`
	QualityLabel string  `json:"quality_label,omitempty"`
	AudioQuality string  `json:"audio_quality,omitempty"`
	MediaURL     string  `json:"url"`
}

// Muxed reports whether the variant carries both tracks in one stream.
func (f FormatVariant) Muxed() bool {
	return f.HasAudio && f.HasVideo
}

// AudioOnly reports whether the variant is a pure audio stream.
func (f FormatVariant) AudioOnly() bool {
	return f.HasAudio && !f.HasVideo
}

type VideoInfo struct {
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	DurationSeconds float64         `json:"duration"`
	ThumbnailURL    string          `json:"thumbnail"`
	Formats         []FormatVariant `json:"formats"`
}

// --- Response envelopes ---

type errorResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error"`
}

type downloadResponse struct {
	Status bool          `json:"status"`
	Brand  string        `json:"marca,omitempty"`
	Origin string        `json:"fuente,omitempty"`
	Video  *videoSummary `json:"video"`
}

type videoSummary struct {
	Title       string        `json:"titulo"`
	Author      string        `json:"autor"`
	Duration    float64       `json:"duracion"`
	Thumbnail   string        `json:"miniatura"`
	OriginalURL string        `json:"url_original"`
	VideoFormat *videoFormat  `json:"formato_video"`
	Audios      []audioFormat `json:"audios_m4a"`
}

type videoFormat struct {
	Quality   string `json:"calidad"`
	Extension string `json:"extension"`
	Link      string `json:"enlace"`
}

type audioFormat struct {
	Quality   string `json:"calidad"`
	Bitrate   any    `json:"bitrate"`
	Extension string `json:"extension"`
	Link      string `json:"enlace"`
	FormatID  string `json:"format_id"`
}

type linkResponse struct {
	Status    bool   `json:"status"`
	Kind      string `json:"tipo"`
	Link      string `json:"enlace"`
	Extension string `json:"extension"`
	Quality   string `json:"calidad"`
	Bitrate   any    `json:"bitrate,omitempty"`
	FormatID  string `json:"format_id,omitempty"`
}

type HealthStatus struct {
	Status           string `json:"status"`
	Source           string `json:"source"`
	ActiveTranscodes int64  `json:"active_transcodes"`
	TranscodeSlots   int    `json:"transcode_slots"`
	Cache            bool   `json:"cache"`
	Uptime           string `json:"uptime"`
}

type serviceStats struct {
	startedAt time.Time

	requests         int64
	failures         int64
	notFound         int64
	activeTranscodes int64
	transcodes       int64
	transcodeErrors  int64
}
