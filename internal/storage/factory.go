package storage

import (
	"fmt"

	"issueapi/internal/config"
)

// New builds the backend selected by cfg.Storage.Backend.
func New(cfg *config.AppConfig) (Storage, error) {
	switch cfg.Storage.Backend {
	case "local", "":
		return NewLocal(cfg.Storage.UploadDir)
	case "minio":
		return NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (must be 'local' or 'minio')", cfg.Storage.Backend)
	}
}
