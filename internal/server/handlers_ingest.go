package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/replens/internal/exercise"
	"github.com/claude/replens/internal/ingest"
	"github.com/claude/replens/internal/ingest/csvcapture"
	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/resegment"
)

// maxBodyBytes bounds capture uploads.
const maxBodyBytes = 32 << 20

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var payload models.CapturePayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	start := time.Now()
	result, err := s.capture.Ingest(r.Context(), payload, "json", uid)
	s.logImport(uid, "json", result, err, int(time.Since(start).Milliseconds()))
	s.writeIngestResult(w, result, err)
}

func (s *Server) handleIngestCSV(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	payload, err := csvcapture.Parse(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	payload.Exercise = r.URL.Query().Get("exercise")
	payload.Equipment = r.URL.Query().Get("equipment")
	if at := r.URL.Query().Get("performed_at"); at != "" {
		t, err := parseTime(at)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid performed_at: " + err.Error()})
			return
		}
		payload.PerformedAt = &t
	}

	start := time.Now()
	result, err := s.capture.Ingest(r.Context(), payload, "csv", uid)
	s.logImport(uid, "csv", result, err, int(time.Since(start).Milliseconds()))
	s.writeIngestResult(w, result, err)
}

func (s *Server) writeIngestResult(w http.ResponseWriter, result *ingest.Result, err error) {
	switch {
	case isCaptureError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		s.log.Error("ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// handleAnalyze runs the pipeline on a posted capture without storing it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload models.CapturePayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	workout, err := models.NormalizeWorkout(payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), workout)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleResegment repairs the boundaries of one posted set.
func (s *Server) handleResegment(w http.ResponseWriter, r *http.Request) {
	maxReps := 0
	if v := r.URL.Query().Get("max_reps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_reps must be a non-negative integer"})
			return
		}
		maxReps = n
	}

	var raw models.RawSet
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	name := r.URL.Query().Get("exercise")
	workout, err := models.NormalizeWorkout(models.CapturePayload{Exercise: name, Sets: []models.RawSet{raw}})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resegment.Resegment(workout.Sets[0], exercise.Normalize(name), maxReps))
}

func isCaptureError(err error) bool {
	return errors.Is(err, models.ErrNoSets) || errors.Is(err, models.ErrEmptyRepetition)
}

