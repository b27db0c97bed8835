package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/josephgoksu/chorepay/internal/chores"
	"github.com/josephgoksu/chorepay/internal/telemetry"
	"github.com/josephgoksu/chorepay/models"
	"github.com/josephgoksu/chorepay/store"
	"github.com/josephgoksu/chorepay/types"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.List(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeAPIJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in chores.TaskFields
	if !s.decodeBody(w, r, &in) {
		return
	}

	task, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.telemetry.Track(telemetry.EventTaskCreated, map[string]any{"size": string(task.Size)})
	writeAPIJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in chores.TaskFields
	if !s.decodeBody(w, r, &in) {
		return
	}

	task, err := s.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.Completed != nil && *in.Completed {
		s.telemetry.Track(telemetry.EventTaskCompleted, map[string]any{
			"size":        string(task.Size),
			"has_picture": task.HasPicture(),
		})
	}
	writeAPIJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, DeleteResponse{ID: id})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Reset(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.telemetry.Track(telemetry.EventTasksReset, map[string]any{"count": n})
	writeAPIJSON(w, http.StatusOK, ResetResponse{Reset: n})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Report(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, report)
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")

	// Render into a buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := s.svc.ExportCSV(r.Context(), month, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := "chores.csv"
	if month != "" {
		filename = fmt.Sprintf("chores-%s.csv", month)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, http.StatusOK, HealthResponse{
		OK:      true,
		Service: "chorepay",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeBody reads a JSON object into v. An empty body decodes as {}.
// It writes the error response itself and reports whether decoding succeeded.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeAPIJSON(w, http.StatusRequestEntityTooLarge,
			types.NewAPIError(types.CodeValidation, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
		return false
	}
	writeAPIJSON(w, http.StatusBadRequest,
		types.NewAPIError(types.CodeValidation, "invalid request body: "+err.Error()))
	return false
}

// writeError maps a service error onto a status code and JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chores.ErrNotFound):
		writeAPIJSON(w, http.StatusNotFound, types.NewAPIError(types.CodeNotFound, err.Error()))
	case errors.Is(err, chores.ErrValidation):
		writeAPIJSON(w, http.StatusBadRequest, types.NewAPIError(types.CodeValidation, err.Error()))
	case errors.Is(err, store.ErrConflict):
		writeAPIJSON(w, http.StatusConflict, types.NewAPIError(types.CodeConflict, "task list changed concurrently, try again"))
	default:
		s.log.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeAPIJSON(w, http.StatusInternalServerError, types.NewAPIError(types.CodeInternal, "internal server error"))
	}
}

func writeAPIJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
