// Package server exposes chart analysis, conversion, and registry
// lookups over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"github.com/openrhythm/rox/analysis"
	"github.com/openrhythm/rox/codec"
	"github.com/openrhythm/rox/constants"
	"github.com/openrhythm/rox/model"
	"github.com/openrhythm/rox/pattern"
	"github.com/openrhythm/rox/registry"
)

// ChartFinder is the registry lookup surface /charts/{id} needs.
type ChartFinder interface {
	GetCharts(ids []string) (map[string]registry.ChartRecord, error)
}

type Server struct {
	finder ChartFinder
}

func New(finder ChartFinder) *Server {
	return &Server{finder: finder}
}

// Handler builds the router with CORS and request-id middleware.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(withRequestID)
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")
	router.HandleFunc("/convert", s.handleConvert).Methods("POST")
	router.HandleFunc("/charts/{id}", s.handleGetChart).Methods("GET")
	return cors.Default().Handler(router)
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Info("chart server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type requestIDKey struct{}

type requestLoggerKey struct{}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		reqLog := log.With("id", id)
		reqLog.Info("request", "method", r.Method, "path", r.URL.Path)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = context.WithValue(ctx, requestLoggerKey{}, reqLog)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func requestLog(r *http.Request) *log.Logger {
	if l, ok := r.Context().Value(requestLoggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:  "ok",
		Version: constants.Version,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	chart, status, err := decodeUpload(r)
	if err != nil {
		writeError(w, r, status, err)
		return
	}
	result, err := pattern.AnalyzeDefault(chart)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, model.AnalyzeResponse{
		RequestID: requestID(r),
		Chart:     summarize(chart),
		Analysis:  result,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if to == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("missing to parameter"))
		return
	}
	target, err := codec.ForPath("chart." + to)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	chart, status, err := decodeUpload(r)
	if err != nil {
		writeError(w, r, status, err)
		return
	}
	out, err := target.Encode(chart)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, codec.ErrEncodeUnsupported) {
			status = http.StatusBadRequest
		}
		writeError(w, r, status, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=chart.%s", to))
	if _, err := w.Write(out); err != nil {
		requestLog(r).Error("could not write converted chart", "err", err)
	}
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	if s.finder == nil {
		writeError(w, r, http.StatusServiceUnavailable, errors.New("chart registry is not configured"))
		return
	}
	id := mux.Vars(r)["id"]
	records, err := s.finder.GetCharts([]string{id})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	rec, ok := records[id]
	if !ok {
		writeError(w, r, http.StatusNotFound, errors.Errorf("chart %v not found", id))
		return
	}
	writeJSON(w, http.StatusOK, model.ChartRecordResponse{
		ID:       rec.ID,
		Title:    rec.Title,
		Artist:   rec.Artist,
		Creator:  rec.Creator,
		KeyCount: rec.KeyCount,
		Hash:     rec.Hash,
		Key:      rec.Key,
	})
}

// decodeUpload reads the chart from a multipart "chart" field or the
// raw body and decodes it. A ?format= query overrides the filename
// extension, which raw bodies do not have.
func decodeUpload(r *http.Request) (*model.Chart, int, error) {
	data, filename, err := readChartUpload(r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	path := filename
	if format := r.URL.Query().Get("format"); format != "" {
		path = "chart." + format
	}
	if path == "" {
		return nil, http.StatusBadRequest, errors.New("cannot tell the chart format: pass ?format= or upload a named file")
	}
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	chart, err := c.Decode(data)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}
	return chart, http.StatusOK, nil
}

func readChartUpload(r *http.Request) ([]byte, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(int64(constants.MaxFileSize)); err != nil {
			return nil, "", errors.Wrap(err, "could not parse multipart form")
		}
		file, header, err := r.FormFile("chart")
		if err != nil {
			return nil, "", errors.Wrap(err, "multipart form has no chart file")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		return data, header.Filename, errors.Wrap(err, "could not read chart upload")
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, int64(constants.MaxFileSize)+1))
	return data, "", errors.Wrap(err, "could not read request body")
}

func summarize(chart *model.Chart) model.ChartSummary {
	return model.ChartSummary{
		Title:          chart.Metadata.Title,
		Artist:         chart.Metadata.Artist,
		Creator:        chart.Metadata.Creator,
		DifficultyName: chart.Metadata.DifficultyName,
		KeyCount:       chart.KeyCount,
		NoteCount:      len(chart.Notes),
		DurationUs:     chart.DurationUs(),
		Nps:            analysis.Nps(chart),
		BpmMin:         analysis.BpmMin(chart),
		BpmMax:         analysis.BpmMax(chart),
		BpmMode:        analysis.BpmMode(chart),
		ShortHash:      analysis.ShortHash(chart),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("could not write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	requestLog(r).Error("request failed", "status", status, "err", err)
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}
