package port

import (
	"context"

	"github.com/bnema/webhub/internal/domain/entity"
)

//go:generate mockgen -source=config_store.go -destination=mocks/mock_config_store.go

// ConfigStore loads and saves the whole AppConfig record.
// Save always rewrites the record; there is no partial persistence.
type ConfigStore interface {
	Load(ctx context.Context) (*entity.AppConfig, error)
	Save(ctx context.Context, cfg *entity.AppConfig) error
}
