package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by CatalogCache.GetList when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// CatalogCache stores the serialized unfiltered catalog listing. It is a pure
// read accelerator: every inventory write invalidates it, and cache failures
// must never fail the request.
type CatalogCache interface {
	GetList(ctx context.Context) ([]byte, error)
	SetList(ctx context.Context, payload []byte) error
	Invalidate(ctx context.Context) error
}
