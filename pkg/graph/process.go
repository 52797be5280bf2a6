package graph

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/signalgraph/signalgraph/pkg/common"
	"github.com/signalgraph/signalgraph/pkg/loader"
	"github.com/signalgraph/signalgraph/pkg/logger"

	"golang.org/x/sync/errgroup"
)

func processFile(ctx context.Context, file loader.NoteFile) (common.Extraction, error) {
	text, err := file.GetText(ctx)
	if err != nil {
		return common.Extraction{}, err
	}
	// Invalid bytes decode to U+FFFD; only a failed read drops a note.
	return Extract(strings.ToValidUTF8(string(text), "\uFFFD"), file.RelPath), nil
}

// extractAll processes files concurrently. The returned extractions follow
// the order of files; a file that fails contributes an empty extraction and
// an ExtractionError. Only cancellation of ctx aborts the whole run.
func (g *GraphClient) extractAll(ctx context.Context, files []loader.NoteFile) ([]common.Extraction, []*ExtractionError, error) {
	results := make([]common.Extraction, len(files))
	var failures []*ExtractionError
	mutex := sync.Mutex{}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelFiles)

	for i, file := range files {
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}

			result, err := processFile(gCtx, file)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				logger.Error("Failed to extract note", "path", file.RelPath, "err", err)

				mutex.Lock()
				failures = append(failures, &ExtractionError{Path: file.RelPath, Err: err})
				mutex.Unlock()
				return nil
			}

			results[i] = result
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Path < failures[j].Path
	})
	return results, failures, nil
}
