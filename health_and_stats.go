package main

import (
	"net/http"
	"sync/atomic"
	"time"
)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if int(atomic.LoadInt64(&s.stats.activeTranscodes)) >= s.slots.size() {
		status = "busy"
	}
	_, cached := s.source.(*infoCache)
	writeJSON(w, http.StatusOK, HealthStatus{
		Status:           status,
		Source:           s.source.Name(),
		ActiveTranscodes: atomic.LoadInt64(&s.stats.activeTranscodes),
		TranscodeSlots:   s.slots.size(),
		Cache:            cached,
		Uptime:           time.Since(s.stats.startedAt).Round(time.Second).String(),
	})
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"requests":          atomic.LoadInt64(&s.stats.requests),
		"failures":          atomic.LoadInt64(&s.stats.failures),
		"not_found":         atomic.LoadInt64(&s.stats.notFound),
		"active_transcodes": atomic.LoadInt64(&s.stats.activeTranscodes),
		"transcodes":        atomic.LoadInt64(&s.stats.transcodes),
		"transcode_errors":  atomic.LoadInt64(&s.stats.transcodeErrors),
		"uptime_seconds":    time.Since(s.stats.startedAt).Seconds(),
	})
}
