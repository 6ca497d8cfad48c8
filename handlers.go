package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service serves the download endpoint. It holds no per-request state.
type Service struct {
	cfg        Config
	source     VideoInfoSource
	transcoder Transcoder
	slots      *transcodeSlots
	stats      *serviceStats
	log        *zap.SugaredLogger
}

func NewService(cfg Config, source VideoInfoSource, transcoder Transcoder, log *zap.SugaredLogger) *Service {
	stats := &serviceStats{startedAt: time.Now()}
	return &Service{
		cfg:        cfg,
		source:     source,
		transcoder: transcoder,
		slots:      newTranscodeSlots(cfg.MaxTranscodes, &stats.activeTranscodes),
		stats:      stats,
		log:        log,
	}
}

func (s *Service) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/download/youtube", s.handleDownload)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/", s.handleRoot)
	return recoverMiddleware(s.log, requestLogger(s.log, corsMiddleware(mux)))
}

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, errorResponse{Status: false, Error: "Ruta no encontrada"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Servidor activo y funcionando correctamente")
}

type requestKind int

const (
	kindSummary requestKind = iota
	kindVideo
	kindAudio
	kindMP3
)

// Unknown type values fall back to the summary payload.
func parseKind(v string) requestKind {
	switch v {
	case "video":
		return kindVideo
	case "audio":
		return kindAudio
	case "mp3":
		return kindMP3
	default:
		return kindSummary
	}
}

// GET /download/youtube?url=<url>&type=<audio|video|mp3>
func (s *Service) handleDownload(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&s.stats.requests, 1)
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Status: false, Error: "Método no permitido"})
		return
	}

	query := r.URL.Query()
	raw := query.Get("url")
	if raw == "" {
		s.fail(w, ErrMissingParameter)
		return
	}
	canonical := NormalizeURL(raw)
	log := s.log.With("url", canonical)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.FetchTimeout)
	info, err := s.source.FetchVideoInfo(ctx, canonical)
	cancel()
	if err != nil {
		log.Errorw("video info retrieval failed", "source", s.source.Name(), "error", err)
		s.fail(w, err)
		return
	}

	kind := parseKind(query.Get("type"))
	switch kind {
	case kindVideo:
		video := SelectVideo(info.Formats)
		if video == nil {
			s.fail(w, &selectionError{msg: "No se encontró un formato de video con audio"})
			return
		}
		writeJSON(w, http.StatusOK, AssembleVideoLink(*video))
	case kindAudio, kindMP3:
		audio := SelectAudio(info.Formats)
		if audio == nil {
			s.fail(w, &selectionError{msg: "No se encontró un formato de solo audio"})
			return
		}
		if kind == kindMP3 || s.cfg.TranscodeAudio {
			s.streamMP3(w, r, info, *audio)
			return
		}
		writeJSON(w, http.StatusOK, AssembleAudioLink(*audio))
	default:
		video := SelectVideo(info.Formats)
		audios := AudioOptions(info.Formats, s.cfg.AudioExtension)
		if video == nil && len(audios) == 0 {
			s.fail(w, &selectionError{msg: "No se encontraron formatos descargables"})
			return
		}
		writeJSON(w, http.StatusOK, AssembleDownload(info, audios, video, canonical, s.cfg.Brand))
	}
}

// streamMP3 converts the audio variant into a scratch file and sends it as the body.
// The scratch file is removed on every path out of here.
func (s *Service) streamMP3(w http.ResponseWriter, r *http.Request, info *VideoInfo, audio FormatVariant) {
	release, ok := s.slots.tryAcquire()
	if !ok {
		s.fail(w, ErrBusy)
		return
	}
	defer release()

	path := filepath.Join(s.cfg.TempDir, "ytmp3-"+uuid.New().String()+".mp3")
	log := s.log.With("format_id", audio.FormatID, "file", path)
	defer removeScratch(path, log)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.TranscodeTimeout)
	defer cancel()
	if err := s.transcoder.TranscodeToMP3(ctx, audio.MediaURL, path); err != nil {
		atomic.AddInt64(&s.stats.transcodeErrors, 1)
		log.Errorw("mp3 conversion failed", "error", err)
		s.fail(w, &TranscodeError{Err: err})
		return
	}

	file, err := os.Open(path)
	if err != nil {
		atomic.AddInt64(&s.stats.transcodeErrors, 1)
		log.Errorw("opening converted file failed", "error", err)
		s.fail(w, &TranscodeError{Err: err})
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.mp3\"", sanitizeFilename(info.Title)))
	if st, err := file.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprint(st.Size()))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file); err != nil {
		// Headers are gone, nothing left to tell the client.
		log.Warnw("mp3 stream interrupted", "error", err)
		return
	}
	atomic.AddInt64(&s.stats.transcodes, 1)
}

func (s *Service) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusNotFound:
		atomic.AddInt64(&s.stats.notFound, 1)
	case http.StatusInternalServerError:
		atomic.AddInt64(&s.stats.failures, 1)
	}
	writeJSON(w, status, errorResponse{Status: false, Error: err.Error()})
}
