package adapter

import (
	"context"

	"shelter-guard/internal/domain/model"
)

type UpdateHandler func(ctx context.Context, update model.Update)

// Device is a remote device resolved from the registry.
type Device interface {
	ID() string
	OnUpdate(h UpdateHandler)
}

// MemoryProbe reports current process memory usage.
type MemoryProbe interface {
	Usage() model.MemoryUsage
}
