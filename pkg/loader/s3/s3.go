package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/singleflight"

	"github.com/signalgraph/signalgraph/internal/util"
	"github.com/signalgraph/signalgraph/pkg/loader"
	"github.com/signalgraph/signalgraph/pkg/logger"
)

// ObjectAPI is the subset of *s3.Client the loader needs.
type ObjectAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3NoteLoader is a NoteLoader implementation that discovers and reads notes
// stored under a prefix of an S3 bucket. Object keys below the prefix take the
// role of root-relative paths.
type S3NoteLoader struct {
	bucket string
	prefix string
	exts   []string
	client ObjectAPI
	retry  util.RetryPolicy

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewS3NoteLoaderParams defines the configuration for an S3NoteLoader.
//
// Bucket specifies the S3 bucket name.
// Prefix narrows discovery to keys below it; a trailing slash is implied.
// Retry defaults to util.DefaultRetryPolicy.
type NewS3NoteLoaderParams struct {
	Bucket     string
	Prefix     string
	Extensions []string
	Client     ObjectAPI
	Retry      *util.RetryPolicy
}

// NewS3NoteLoader creates a new S3NoteLoader using an existing client. Use
// storage.NewS3Client to build one from configuration.
//
// Example:
//
//	client, err := storage.NewS3Client(ctx, cfg.S3)
//	if err != nil {
//		log.Fatal(err)
//	}
//	notes := s3.NewS3NoteLoader(s3.NewS3NoteLoaderParams{
//		Bucket: "notes",
//		Prefix: "vault",
//		Client: client,
//	})
//	discovery, err := notes.Discover(ctx)
func NewS3NoteLoader(params NewS3NoteLoaderParams) *S3NoteLoader {
	prefix := strings.Trim(params.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	retry := util.DefaultRetryPolicy
	if params.Retry != nil {
		retry = *params.Retry
	}
	return &S3NoteLoader{
		bucket: params.Bucket,
		prefix: prefix,
		exts:   loader.NormalizeExtensions(params.Extensions),
		client: params.Client,
		retry:  retry,
		cache:  make(map[string][]byte),
	}
}

// Root returns the bucket location notes are discovered from.
func (l *S3NoteLoader) Root() string {
	return fmt.Sprintf("s3://%s/%s", l.bucket, l.prefix)
}

// Discover lists every object below the prefix. Keys with a hidden segment,
// directory markers and keys without a note extension are ignored.
func (l *S3NoteLoader) Discover(ctx context.Context) (loader.Discovery, error) {
	result := loader.Discovery{Root: l.Root()}

	pages := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(l.prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			return result, &loader.DiscoveryError{Root: l.Root(), Err: err}
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rel := strings.TrimPrefix(key, l.prefix)
			if rel == "" || strings.HasSuffix(rel, "/") || hasHiddenSegment(rel) {
				continue
			}
			if !loader.HasExtension(rel, l.exts) {
				continue
			}
			file := loader.NoteFile{
				Path:    key,
				RelPath: rel,
				Size:    aws.ToInt64(obj.Size),
				Loader:  l,
			}
			if obj.LastModified != nil {
				file.ModTime = *obj.LastModified
			}
			result.Files = append(result.Files, file)
		}
	}

	l.prune(result.Files)
	return result, nil
}

func hasHiddenSegment(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if loader.IsHidden(segment) {
			return true
		}
	}
	return false
}

func (l *S3NoteLoader) prune(files []loader.NoteFile) {
	live := make(map[string]struct{}, len(files))
	for _, f := range files {
		live[loader.CacheKey(f)] = struct{}{}
	}

	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	for key := range l.cache {
		if _, ok := live[key]; !ok {
			delete(l.cache, key)
		}
	}
}

// GetFileText retrieves the contents of a discovered note from the bucket.
// Transient failures are retried; results are cached per object version.
func (l *S3NoteLoader) GetFileText(ctx context.Context, file loader.NoteFile) ([]byte, error) {
	cacheKey := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[cacheKey]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(cacheKey, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[cacheKey]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		byts, err := l.getObject(ctx, file.Path)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[cacheKey] = byts
		l.cacheMu.Unlock()

		return byts, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// GetSource reads the object at a prefix-relative path.
func (l *S3NoteLoader) GetSource(ctx context.Context, relPath string) ([]byte, error) {
	cleaned, err := loader.CleanRelPath(relPath)
	if err != nil {
		return nil, err
	}
	return l.getObject(ctx, l.prefix+cleaned)
}

func (l *S3NoteLoader) getObject(ctx context.Context, key string) ([]byte, error) {
	return util.RetryWithContext(ctx, l.retry, func(ctx context.Context) ([]byte, error) {
		out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var noKey *types.NoSuchKey
			if errors.As(err, &noKey) {
				return nil, util.Permanent(fmt.Errorf("%w: %s", loader.ErrNotFound, key))
			}
			logger.Debug("S3 read failed", "bucket", l.bucket, "key", key, "err", err)
			return nil, err
		}
		defer out.Body.Close()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, out.Body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}
