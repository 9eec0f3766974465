package api

import (
	"errors"
	"net/http"

	"github.com/gdgscriet/studyjam-server/internal/http/response"
	"github.com/gdgscriet/studyjam-server/internal/logger"
	"github.com/gdgscriet/studyjam-server/internal/service"
)

// handleUploadCSV forwards a multipart "file" field to the participant API.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), s.logger)

	claims, err := requireAdmin(r.Context())
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "File is too large", log)
			return
		}
		response.BadRequest(w, "Invalid multipart form", log)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, service.MsgNotCSV, log)
		return
	}
	defer file.Close()

	res, err := s.services.Upload.Upload(r.Context(), header.Filename, header.Size, file, claims.FirstName)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}
	response.SuccessMessage(w, res, res.Message, log)
}
