package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/openpaper/abstractor"
	"github.com/openpaper/abstractor/store"
)

// extractTimeout bounds a single extraction request, upload excluded.
const extractTimeout = 2 * time.Minute

type handler struct {
	engine abstractor.Engine
}

func newHandler(e abstractor.Engine) *handler {
	return &handler{engine: e}
}

// routes wires the handler's endpoints onto a fresh mux.
func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /extract", h.handleExtract)
	mux.HandleFunc("GET /extractions", h.handleListExtractions)
	mux.HandleFunc("GET /extractions/{id}", h.handleGetExtraction)
	mux.HandleFunc("DELETE /extractions/{id}", h.handleDeleteExtraction)
	mux.HandleFunc("GET /stats", h.handleStats)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	return mux
}

// POST /extract
// Accepts a multipart PDF upload (field "file") or JSON with a local file
// path. Optional fields method, no_fallback, x_tolerance, and force adjust
// the run. Extraction outcomes, failures included, come back as a Result
// with status 200; only malformed requests get a 4xx.
func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), extractTimeout)
	defer cancel()

	// Try multipart upload first
	if err := r.ParseMultipartForm(100 << 20); err == nil { // 100MB max
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			opts, err := formOptions(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			// Sanitise filename to prevent path traversal. The name is kept
			// stable so a re-upload of the same paper updates its stored row.
			safeName := filepath.Base(header.Filename)

			tmpPath := filepath.Join(os.TempDir(), safeName)
			dst, err := os.Create(tmpPath)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to process file")
				slog.Error("creating temp file", "error", err)
				return
			}
			if _, err := io.Copy(dst, file); err != nil {
				dst.Close()
				writeError(w, http.StatusInternalServerError, "failed to save file")
				slog.Error("saving uploaded file", "error", err)
				return
			}
			dst.Close()
			defer os.Remove(tmpPath)

			res := h.engine.Extract(ctx, tmpPath, opts...)
			writeJSON(w, http.StatusOK, res)
			return
		}
	}

	// Try JSON body with path
	var req struct {
		Path       string  `json:"path"`
		Method     string  `json:"method,omitempty"`
		NoFallback bool    `json:"no_fallback,omitempty"`
		XTolerance float64 `json:"x_tolerance,omitempty"`
		Force      bool    `json:"force,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart file or JSON with 'path'")
		return
	}

	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	opts, err := buildOptions(req.Method, req.NoFallback, req.Force, req.XTolerance)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A nonexistent path is an extraction outcome, not a bad request: the
	// result carries the "File not found" error.
	res := h.engine.Extract(ctx, req.Path, opts...)
	writeJSON(w, http.StatusOK, res)
}

// formOptions reads the per-request override fields out of a parsed
// multipart form.
func formOptions(r *http.Request) ([]abstractor.ExtractOption, error) {
	noFallback := false
	if v := r.FormValue("no_fallback"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid no_fallback %q", v)
		}
		noFallback = b
	}
	force := false
	if v := r.FormValue("force"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid force %q", v)
		}
		force = b
	}
	xTol := 0.0
	if v := r.FormValue("x_tolerance"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid x_tolerance %q", v)
		}
		xTol = f
	}
	return buildOptions(r.FormValue("method"), noFallback, force, xTol)
}

// buildOptions turns request-level overrides into engine options. Zero
// values mean "keep the configured default".
func buildOptions(method string, noFallback, force bool, xTol float64) ([]abstractor.ExtractOption, error) {
	var opts []abstractor.ExtractOption
	if method != "" {
		m := abstractor.Method(method)
		if !m.Valid() {
			return nil, fmt.Errorf("unknown method %q (use gap_based or alignment_based)", method)
		}
		opts = append(opts, abstractor.WithMethod(m))
	}
	if noFallback {
		opts = append(opts, abstractor.WithoutFallback())
	}
	if force {
		opts = append(opts, abstractor.WithForce())
	}
	if xTol > 0 {
		opts = append(opts, abstractor.WithXTolerance(xTol))
	}
	return opts, nil
}

// GET /extractions
func (h *handler) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	s := h.resultStore(w)
	if s == nil {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	exs, err := s.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list extractions")
		slog.Error("list extractions error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"extractions": exs,
	})
}

// GET /extractions/{id}
func (h *handler) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	s := h.resultStore(w)
	if s == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid extraction id")
		return
	}

	ex, err := s.GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "extraction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load extraction")
		slog.Error("get extraction error", "extraction_id", id, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, ex)
}

// DELETE /extractions/{id}
func (h *handler) handleDeleteExtraction(w http.ResponseWriter, r *http.Request) {
	s := h.resultStore(w)
	if s == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid extraction id")
		return
	}

	err = s.Delete(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "extraction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete failed")
		slog.Error("delete extraction error", "extraction_id", id, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /stats
func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	s := h.resultStore(w)
	if s == nil {
		return
	}

	stats, err := s.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		slog.Error("stats error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GET /healthz
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// resultStore returns the engine's store, or writes a 503 and returns nil
// when the server runs without one.
func (h *handler) resultStore(w http.ResponseWriter) *store.Store {
	s := h.engine.Store()
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "no results database configured")
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
