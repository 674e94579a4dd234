package out

import (
	"context"

	"readtrack/internal/modules/hook/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Notify(ctx context.Context, manifest domain.Manifest, notification domain.Notification) (domain.Ack, error)
}
