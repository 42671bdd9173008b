package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/media/images"
)

// ImageStorages groups all image storage services.
type ImageStorages struct {
	Covers  *images.Storage
	Avatars *images.Storage
}

// ProvideImageStorages provides all image storage services.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	covers, err := images.NewStorage(cfg.Data.MediaPath(), "covers")
	if err != nil {
		return nil, fmt.Errorf("cover storage: %w", err)
	}

	avatars, err := images.NewStorage(cfg.Data.MediaPath(), "avatars")
	if err != nil {
		return nil, fmt.Errorf("avatar storage: %w", err)
	}

	log.Info("Image storages initialized")

	return &ImageStorages{
		Covers:  covers,
		Avatars: avatars,
	}, nil
}
