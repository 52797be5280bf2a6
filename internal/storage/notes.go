package storage

import (
	"context"

	"github.com/signalgraph/signalgraph/internal/config"
	"github.com/signalgraph/signalgraph/pkg/loader"
	ioloader "github.com/signalgraph/signalgraph/pkg/loader/io"
	s3loader "github.com/signalgraph/signalgraph/pkg/loader/s3"
)

// NewNoteLoader returns the note source selected by cfg.Source.
func NewNoteLoader(ctx context.Context, cfg *config.Config) (loader.NoteLoader, error) {
	if cfg.Source == config.SourceS3 {
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3loader.NewS3NoteLoader(s3loader.NewS3NoteLoaderParams{
			Bucket:     cfg.S3.Bucket,
			Prefix:     cfg.S3.Prefix,
			Extensions: cfg.Extensions,
			Client:     client,
		}), nil
	}

	return ioloader.NewIONoteLoader(ioloader.NewIONoteLoaderParams{
		Root:       cfg.Root,
		Extensions: cfg.Extensions,
	})
}
