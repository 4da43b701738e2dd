// Package catalog provides the track and user sources the engine builds from.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/ritzau/syncup/pkg/model"
)

const (
	// TracksFile is the catalog file name inside the data directory
	TracksFile = "tracks.json"
	// UsersFile is the user list file name inside the data directory
	UsersFile = "users.json"
)

// TrackProvider returns a snapshot of every track in catalog order
type TrackProvider interface {
	ListAll(ctx context.Context) ([]*model.Track, error)
}

// UserProvider returns a snapshot of every user with its follow list
type UserProvider interface {
	ListAll(ctx context.Context) ([]*model.User, error)
}

// FileTrackProvider reads tracks from a JSON array on disk
type FileTrackProvider struct {
	Path string
}

// FileUserProvider reads users from a JSON array on disk
type FileUserProvider struct {
	Path string
}

// NewFileProviders returns providers for the standard files in dataDir
func NewFileProviders(dataDir string) (*FileTrackProvider, *FileUserProvider) {
	return &FileTrackProvider{Path: filepath.Join(dataDir, TracksFile)},
		&FileUserProvider{Path: filepath.Join(dataDir, UsersFile)}
}

func (p *FileTrackProvider) ListAll(ctx context.Context) ([]*model.Track, error) {
	tracks, err := readJSON[*model.Track](ctx, p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	out := tracks[:0]
	for _, t := range tracks {
		if t == nil {
			continue
		}
		// Catalog entries always carry a genre
		if t.Genre == "" {
			t.Genre = model.GenreOther
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *FileUserProvider) ListAll(ctx context.Context) ([]*model.User, error) {
	users, err := readJSON[*model.User](ctx, p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	out := users[:0]
	for _, u := range users {
		if u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

// readJSON decodes a JSON array file. A missing file is an empty list.
// Callers drop null entries.
func readJSON[T any](ctx context.Context, path string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var items []T
	if err := json.UnmarshalContext(ctx, data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return items, nil
}
