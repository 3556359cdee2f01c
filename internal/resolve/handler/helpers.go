package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"msku-service/internal/fileio"
	"msku-service/internal/resolve/engine"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "message": msg})
}

// statusOf maps the engine error taxonomy onto HTTP codes.
func statusOf(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, engine.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrDuplicateMapping):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := engine.Message(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeMessage(w, status, msg)
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// readerName makes sure fileio can pick a reader for uploads that arrive
// without an extension but with a usable content type.
func readerName(filename string, ft fileio.FileType) string {
	if filepath.Ext(filename) != "" {
		return filename
	}
	switch ft {
	case fileio.TypeCSV:
		return filename + ".csv"
	case fileio.TypeExcel:
		return filename + ".xlsx"
	case fileio.TypeJSON:
		return filename + ".json"
	}
	return filename
}

func trim(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}
