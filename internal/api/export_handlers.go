package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gdgscriet/studyjam-server/internal/export"
	"github.com/gdgscriet/studyjam-server/internal/http/response"
	"github.com/gdgscriet/studyjam-server/internal/logger"
)

// handleExport streams the current filtered and sorted participant view as xlsx.
// It accepts the same query parameters as GET /api/v1/participants.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), s.logger)

	q := r.URL.Query()
	pq := ParticipantQuery{
		Redeemed:   q.Get("redeemed"),
		ProgressOp: q.Get("progress_op"),
		Progress:   q.Get("progress"),
		BadgesOp:   q.Get("badges_op"),
		Badges:     q.Get("badges"),
		Query:      q.Get("q"),
		Sort:       q.Get("sort"),
	}
	// Mounted behind requireAuth.
	spec, keys, err := pq.parse(true)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	view, err := s.services.Dashboard.Participants(r.Context(), spec, keys)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	// Buffer so a failed write can still be reported as JSON.
	var buf bytes.Buffer
	if err := export.Write(&buf, view.Rows); err != nil {
		log.Error("Failed to build export", "error", err)
		response.InternalError(w, "Failed to export participants", log)
		return
	}

	filename := export.Filename(time.Now())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn("Export write interrupted", "error", err)
		return
	}
	log.Info("participants exported", "rows", len(view.Rows), "filename", filename)
}
