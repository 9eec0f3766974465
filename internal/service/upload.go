package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/id"
	"github.com/gdgscriet/studyjam-server/internal/remote"
	"github.com/gdgscriet/studyjam-server/internal/sse"
)

// Operator messages for CSV uploads.
const (
	MsgUploadFailed  = "Failed to upload CSV. Please try again."
	MsgUploadSuccess = "CSV uploaded successfully"
	MsgNotCSV        = "Please select a CSV file"
)

// MaxUploadSize bounds an uploaded CSV file.
const MaxUploadSize = 10 << 20

// UploadService forwards participant CSVs to the remote API.
type UploadService struct {
	uploader  CSVUploader
	dashboard *DashboardService
	history   HistoryStore
	events    EventEmitter
	logger    *slog.Logger
}

// NewUploadService creates an upload service. history may be nil.
func NewUploadService(uploader CSVUploader, dashboard *DashboardService, history HistoryStore, events EventEmitter, logger *slog.Logger) *UploadService {
	if events == nil {
		events = NewNoopEmitter()
	}
	return &UploadService{
		uploader:  uploader,
		dashboard: dashboard,
		history:   history,
		events:    events,
		logger:    logger,
	}
}

// Upload sends one CSV file, records it, and reloads the dashboard on success.
func (s *UploadService) Upload(ctx context.Context, filename string, size int64, content io.Reader, uploadedBy string) (*domain.UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, domainerrors.Validation(MsgNotCSV)
	}
	if size > MaxUploadSize {
		return nil, domainerrors.Validationf("file exceeds %d MB", MaxUploadSize>>20)
	}

	record := &domain.UploadRecord{
		ID:         id.MustGenerate(id.PrefixUpload),
		Filename:   filename,
		Size:       size,
		UploadedBy: uploadedBy,
		CreatedAt:  time.Now(),
	}

	res, err := s.uploader.UploadCSV(ctx, filename, content)
	if err != nil {
		msg := remote.UserMessage(err, MsgUploadFailed)
		record.Error = msg
		s.record(record)
		s.logger.Warn("csv upload failed", "filename", filename, "error", err)
		return nil, upstreamError(err, MsgUploadFailed)
	}
	if res.Message == "" {
		res.Message = MsgUploadSuccess
	}

	record.Message = res.Message
	record.Added = res.Added
	record.Updated = res.Updated
	s.record(record)

	s.events.Emit(sse.NewCSVUploadedEvent(filename, res))
	s.logger.Info("csv uploaded", "filename", filename, "added", res.Added, "updated", res.Updated)

	if s.dashboard != nil {
		if _, err := s.dashboard.Load(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, ErrLoadSuperseded) {
			s.logger.Error("dashboard reload after upload failed", "error", err)
		}
	}
	return &res, nil
}

func (s *UploadService) record(r *domain.UploadRecord) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.RecordUpload(ctx, r); err != nil {
		s.logger.Warn("failed to record upload", "id", r.ID, "error", err)
	}
}
