package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// remoteSource asks a third-party download API for the video. Such APIs wrap the payload
// in a status envelope, often under a vendor-specific key.
type remoteSource struct {
	endpoint string
	client   *http.Client
}

func newRemoteSource(endpoint string, client *http.Client) *remoteSource {
	return &remoteSource{endpoint: endpoint, client: client}
}

func (s *remoteSource) Name() string {
	return SourceRemote
}

type remoteFormat struct {
	FormatID     looseString `json:"format_id"`
	Type         string      `json:"type"`
	Extension    string      `json:"extension"`
	Ext          string      `json:"ext"`
	HasAudio     *bool       `json:"has_audio"`
	HasVideo     *bool       `json:"has_video"`
	Bitrate      looseNumber `json:"bitrate"`
	Quality      looseString `json:"quality"`
	QualityLabel string      `json:"quality_label"`
	AudioQuality string      `json:"audio_quality"`
	URL          string      `json:"url"`
}

type remotePayload struct {
	Title     string         `json:"title"`
	Author    string         `json:"author"`
	Uploader  string         `json:"uploader"`
	Duration  looseNumber    `json:"duration"`
	Thumbnail string         `json:"thumbnail"`
	Formats   []remoteFormat `json:"formats"`
}

func (s *remoteSource) requestURL(canonicalURL string) (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("url", canonicalURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *remoteSource) FetchVideoInfo(ctx context.Context, canonicalURL string) (*VideoInfo, error) {
	fail := func(err error) error {
		return &RetrievalError{Source: SourceRemote, Err: err}
	}
	apiURL, err := s.requestURL(canonicalURL)
	if err != nil {
		return nil, fail(fmt.Errorf("invalid api url: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fail(err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fail(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fail(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(fmt.Errorf("remote api responded %d", resp.StatusCode))
	}
	return decodeRemoteEnvelope(body)
}

func decodeRemoteEnvelope(body []byte) (*VideoInfo, error) {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &RetrievalError{Source: SourceRemote, Err: fmt.Errorf("remote api returned invalid json: %w", err)}
	}
	if !truthy(envelope["status"]) {
		return nil, &RetrievalError{Source: SourceRemote, Err: ErrNoInfo}
	}
	raw, err := json.Marshal(unwrapPayload(envelope))
	if err != nil {
		return nil, &RetrievalError{Source: SourceRemote, Err: err}
	}
	var p remotePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &RetrievalError{Source: SourceRemote, Err: fmt.Errorf("unrecognised remote payload: %w", err)}
	}

	info := &VideoInfo{
		Title:           p.Title,
		Author:          orDefault(p.Author, p.Uploader),
		DurationSeconds: p.Duration.Value,
		ThumbnailURL:    p.Thumbnail,
		Formats:         make([]FormatVariant, 0, len(p.Formats)),
	}
	for _, f := range p.Formats {
		if f.URL == "" {
			continue
		}
		info.Formats = append(info.Formats, FormatVariant{
			FormatID:     string(f.FormatID),
			Extension:    orDefault(f.Extension, f.Ext),
			HasAudio:     flagOr(f.HasAudio, f.Type == "audio"),
			HasVideo:     flagOr(f.HasVideo, f.Type == "video"),
			Bitrate:      f.Bitrate.Value,
			BitrateText:  f.Bitrate.Text,
			Quality:      string(f.Quality),
			QualityLabel: f.QualityLabel,
			AudioQuality: f.AudioQuality,
			MediaURL:     f.URL,
		})
	}
	return info, nil
}

// unwrapPayload returns the object that actually describes the video: the envelope itself
// when it carries the fields, else the first nested object (by key order) that does.
func unwrapPayload(envelope map[string]any) map[string]any {
	if describesVideo(envelope) {
		return envelope
	}
	keys := make([]string, 0, len(envelope))
	for k := range envelope {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m, ok := envelope[k].(map[string]any); ok && describesVideo(m) {
			return m
		}
	}
	return envelope
}

func describesVideo(m map[string]any) bool {
	_, hasFormats := m["formats"]
	_, hasTitle := m["title"]
	return hasFormats || hasTitle
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "ok", "success", "1":
			return true
		}
	}
	return false
}

func flagOr(flag *bool, fallback bool) bool {
	if flag != nil {
		return *flag
	}
	return fallback
}

// looseNumber accepts a JSON number, a numeric string ("128", "128kbps") or a clock
// duration ("3:45"). Anything else decodes to zero. Text keeps a string value verbatim.
type looseNumber struct {
	Value float64
	Text  string
}

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.Value = f
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	n.Text = strings.TrimSpace(s)
	if strings.Contains(n.Text, ":") {
		n.Value = clockSeconds(n.Text)
	} else {
		n.Value = leadingFloat(n.Text)
	}
	return nil
}

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = looseString(num.String())
	}
	return nil
}

func leadingFloat(s string) float64 {
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

func clockSeconds(s string) float64 {
	var total float64
	for _, part := range strings.Split(s, ":") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0
		}
		total = total*60 + v
	}
	return total
}
