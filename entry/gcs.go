package entry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
)

const markdownContentType = "text/markdown; charset=utf-8"

// GCSStore keeps one object per entry in a Google Cloud Storage bucket,
// named <prefix><title><extension>. Objects in nested "directories" below
// the prefix are not entries.
type GCSStore struct {
	bucket *storage.BucketHandle
	prefix string
	ext    string
}

func NewGCSStore(client *storage.Client, bucket, prefix string, opts ...Option) *GCSStore {
	o := newOptions(opts...)
	return &GCSStore{
		bucket: client.Bucket(bucket),
		prefix: normalizePrefix(prefix),
		ext:    o.Extension,
	}
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func objectName(prefix, title, ext string) string {
	return prefix + title + ext
}

// titleFromObject reverses objectName. ok is false for objects that do not
// hold an entry.
func titleFromObject(prefix, name, ext string) (string, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
		return "", false
	}
	title := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
	if ValidateTitle(title) != nil {
		return "", false
	}
	return title, true
}

func (s *GCSStore) List(ctx context.Context) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix})
	var titles []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list entries under %q: %w", s.prefix, err)
		}
		if title, ok := titleFromObject(s.prefix, attrs.Name, s.ext); ok {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *GCSStore) Get(ctx context.Context, title string) (string, bool, error) {
	if ValidateTitle(title) != nil {
		return "", false, nil
	}
	r, err := s.bucket.Object(objectName(s.prefix, title, s.ext)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("open entry %q: %w", title, err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", false, fmt.Errorf("read entry %q: %w", title, err)
	}
	return string(b), true, nil
}

func (s *GCSStore) Save(ctx context.Context, title, content string) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}
	name := objectName(s.prefix, title, s.ext)
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = markdownContentType

	n, err := io.Copy(w, strings.NewReader(content))
	if err != nil {
		w.Close()
		return fmt.Errorf("write entry %q: %w", title, err)
	}
	// the object is only committed once the writer is closed
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit entry %q: %w", title, err)
	}

	log.Ctx(ctx).Debug().
		Str("title", title).
		Str("object", name).
		Int64("written_size", n).
		Msg("entry saved")
	return nil
}
