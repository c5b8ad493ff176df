package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"shop-service/internal/storage"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadService stores product images under generated unique names
type UploadService struct {
	files  storage.FileStore
	logger *zap.Logger
}

// NewUploadService creates an upload service over a file store
func NewUploadService(files storage.FileStore) *UploadService {
	return &UploadService{files: files, logger: util.GetLogger()}
}

// Upload saves body as <uuid><ext> and returns its public URL
func (s *UploadService) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	ctx, span := util.StartSpan(ctx, "UploadService.Upload")
	defer span.End()

	if filename == "" {
		return "", fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))

	url, err := s.files.Save(ctx, name, contentType, body)
	if err != nil {
		util.UploadsTotal.WithLabelValues(s.files.Backend(), "error").Inc()
		return "", err
	}

	util.UploadsTotal.WithLabelValues(s.files.Backend(), "ok").Inc()
	s.logger.Info("File uploaded",
		zap.String("original_name", filename),
		zap.String("url", url))
	return url, nil
}
