package catalog

import (
	"context"

	"github.com/ritzau/syncup/pkg/model"
)

// MemoryTrackProvider serves a fixed track list
type MemoryTrackProvider struct {
	Tracks []*model.Track
}

func (p *MemoryTrackProvider) ListAll(ctx context.Context) ([]*model.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*model.Track, len(p.Tracks))
	copy(out, p.Tracks)
	return out, nil
}

// MemoryUserProvider serves a fixed user list
type MemoryUserProvider struct {
	Users []*model.User
}

func (p *MemoryUserProvider) ListAll(ctx context.Context) ([]*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*model.User, len(p.Users))
	copy(out, p.Users)
	return out, nil
}
