package services

import (
	"context"

	"github.com/studyleave/studyleave-api/internal/models"
)

// DocumentServiceInterface defines the interface for document build operations
type DocumentServiceInterface interface {
	BuildDocument(ctx context.Context, req *models.DocumentRequest) ([]byte, error)
	ActivityTypes() []models.ActivityTypeInfo
}
