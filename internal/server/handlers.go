package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/engine"
	"github.com/haskel/aguacate/internal/features"
	"github.com/haskel/aguacate/internal/imageio"
	"github.com/haskel/aguacate/internal/monitor"
	"github.com/haskel/aguacate/internal/server/middleware"
	"github.com/haskel/aguacate/internal/storage"
)

const defaultHistoryLimit = 50

var (
	errEmptyBody   = errors.New("empty request body")
	errBadImage    = errors.New("invalid image")
	errNoHistory   = errors.New("history is disabled")
	errBadLimit    = errors.New("limit must be a non-negative integer")
	errMissingTask = errors.New("task is required")
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ReadyResponse struct {
	Ready  bool                `json:"ready"`
	Models []engine.TaskStatus `json:"models"`
}

type TaskInfo struct {
	Task    classify.Task    `json:"task"`
	State   engine.State     `json:"state"`
	Hidden  int              `json:"hidden"`
	Classes []classify.Class `json:"classes"`
}

type TasksResponse struct {
	Tasks []TaskInfo `json:"tasks"`
}

type HistorySummary struct {
	Records int                              `json:"records"`
	Counts  map[classify.Task]map[string]int `json:"counts"`
}

type StatusResponse struct {
	Version string              `json:"version"`
	Ready   bool                `json:"ready"`
	Models  []engine.TaskStatus `json:"models"`
	Runtime *monitor.Snapshot   `json:"runtime,omitempty"`
	History *HistorySummary     `json:"history,omitempty"`
}

type FeaturesResponse struct {
	Features  features.Vector    `json:"features"`
	Buckets   map[string]float64 `json:"buckets"`
	Greenness float64            `json:"greenness"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
}

// ClassifyRequest carries a precomputed feature vector.
type ClassifyRequest struct {
	Task     string    `json:"task"`
	Features []float64 `json:"features"`
}

type ClassifyResponse struct {
	classify.Result
	Features *features.Vector `json:"features,omitempty"`
	RecordID string           `json:"record_id,omitempty"`
}

type HistoryResponse struct {
	Records []storage.Record `json:"records"`
	Total   int              `json:"total"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		middleware.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	resp := InfoResponse{
		Name:    "aguacate",
		Version: s.version,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleReady reports 503 until every network has finished training.
// Classification works before that through the heuristic fallback.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{
		Ready:  s.engine.Ready(),
		Models: s.engine.Status(),
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	models := s.engine.Status()
	resp := TasksResponse{Tasks: make([]TaskInfo, 0, len(models))}

	for _, m := range models {
		classes, err := m.Task.Classes()
		if err != nil {
			continue
		}
		resp.Tasks = append(resp.Tasks, TaskInfo{
			Task:    m.Task,
			State:   m.State,
			Hidden:  m.Hidden,
			Classes: classes,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version: s.version,
		Ready:   s.engine.Ready(),
		Models:  s.engine.Status(),
	}

	if s.aggregator != nil {
		resp.Runtime = s.aggregator.Snapshot()
	}
	if s.history != nil {
		resp.History = &HistorySummary{
			Records: s.history.Len(),
			Counts:  s.history.Counts(),
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	v, width, height, _, err := s.readImage(r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	resp := FeaturesResponse{
		Features:  v,
		Buckets:   v.Map(),
		Greenness: v.Greenness(),
		Width:     width,
		Height:    height,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeRequestError(w, err)
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Task == "" {
		s.writeRequestError(w, errMissingTask)
		return
	}

	task, err := classify.ParseTask(req.Task)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	v, err := features.FromSlice(req.Features)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	result, err := s.engine.Classify(task, v)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	resp := ClassifyResponse{Result: result}
	if s.history != nil {
		resp.RecordID = s.history.Add(result, v, "").ID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClassifyImage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("task")
	if name == "" {
		s.writeRequestError(w, errMissingTask)
		return
	}

	task, err := classify.ParseTask(name)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	v, _, _, filename, err := s.readImage(r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	result, err := s.engine.Classify(task, v)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	resp := ClassifyResponse{Result: result, Features: &v}
	if s.history != nil {
		resp.RecordID = s.history.Add(result, v, filename).ID
	}

	s.logger.Debug("image classified",
		"task", task,
		"class", result.Class,
		"source", result.Source,
		"confidence", result.Confidence,
	)

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeRequestError(w, errNoHistory)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeRequestError(w, errBadLimit)
			return
		}
		limit = n
	}

	var records []storage.Record
	if name := r.URL.Query().Get("task"); name != "" {
		task, err := classify.ParseTask(name)
		if err != nil {
			s.writeRequestError(w, err)
			return
		}
		records = s.history.RecentByTask(task, limit)
	} else {
		records = s.history.Recent(limit)
	}

	resp := HistoryResponse{
		Records: records,
		Total:   s.history.Len(),
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistoryRecord(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeRequestError(w, errNoHistory)
		return
	}

	rec, err := s.history.Get(r.PathValue("id"))
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeRequestError(w, errNoHistory)
		return
	}

	s.history.Clear()
	s.logger.Info("history cleared")
	w.WriteHeader(http.StatusNoContent)
}

// readImage decodes the request image, either the raw body or the "image"
// part of a multipart form, and extracts its feature vector. Raw uploads
// may name the file in the X-Filename header.
func (s *Server) readImage(r *http.Request) (v features.Vector, width, height int, filename string, err error) {
	var body io.Reader = r.Body

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, ferr := r.FormFile("image")
		if ferr != nil {
			var maxErr *http.MaxBytesError
			if errors.As(ferr, &maxErr) {
				return v, 0, 0, "", ferr
			}
			return v, 0, 0, "", fmt.Errorf("%w: %w", errBadImage, ferr)
		}
		defer file.Close()
		body = file
		filename = header.Filename
	} else {
		if r.ContentLength == 0 {
			return v, 0, 0, "", errEmptyBody
		}
		filename = filepath.Base(r.Header.Get("X-Filename"))
		if filename == "." {
			filename = ""
		}
	}

	img, err := imageio.Read(body, s.imageSize, s.resampler, s.maxPixels)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, imageio.ErrUnsupported) {
			return v, 0, 0, "", err
		}
		return v, 0, 0, "", fmt.Errorf("%w: %w", errBadImage, err)
	}

	pix, width, height := imageio.Pixels(img)
	v, err = features.Extract(pix, width, height)
	if err != nil {
		return v, 0, 0, "", err
	}

	return v, width, height, filename, nil
}

// writeRequestError maps domain errors to HTTP status codes.
func (s *Server) writeRequestError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, imageio.ErrUnsupported):
		middleware.WriteError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, errNoHistory), errors.Is(err, storage.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, classify.ErrInvalidInput),
		errors.Is(err, classify.ErrUnknownTask),
		errors.Is(err, errEmptyBody),
		errors.Is(err, errBadImage),
		errors.Is(err, errBadLimit),
		errors.Is(err, errMissingTask):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}
