package client

import (
	"context"
	"fmt"
	"os"

	"github.com/dshills/profilecards/internal/schema"
	"github.com/dshills/profilecards/internal/schema/validate"
)

// FileSource reads a GET /profiles response saved to disk.
type FileSource struct {
	Path string
}

// ListProfiles reads and decodes Path. The file is re-read on every call.
func (f *FileSource) ListProfiles(ctx context.Context) ([]schema.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Kind: KindNetwork, Source: f.Path, Err: err}
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Source: f.Path, Err: fmt.Errorf("reading profiles file: %w", err)}
	}
	profiles, err := validate.Parse(data)
	if err != nil {
		return nil, &FetchError{Kind: KindParse, Source: f.Path, Err: err}
	}
	return profiles, nil
}
