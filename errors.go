package main

import (
	"errors"
	"net/http"
)

var (
	ErrMissingParameter = errors.New("Falta parámetro ?url=")
	ErrSelectionEmpty   = errors.New("no matching format")
	ErrBusy             = errors.New("Servidor ocupado, intenta de nuevo más tarde.")
	ErrNoInfo           = errors.New("No se pudo obtener datos del video desde la API externa.")
)

// RetrievalError is returned when an info source is unavailable or answers with an
// unrecognised shape.
type RetrievalError struct {
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	return e.Err.Error()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// TranscodeError is returned when the MP3 conversion fails.
type TranscodeError struct {
	Err error
}

func (e *TranscodeError) Error() string {
	return "mp3 conversion failed: " + e.Err.Error()
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// selectionError names what could not be found, for a 404 body.
type selectionError struct {
	msg string
}

func (e *selectionError) Error() string {
	return e.msg
}

func (e *selectionError) Is(target error) bool {
	return target == ErrSelectionEmpty
}

// statusFor maps an error to the HTTP status of its JSON envelope. Retrieval and
// transcode failures, including timeouts, are 500s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrSelectionEmpty):
		return http.StatusNotFound
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
