package entry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog/log"
)

// FileStore persists one file per entry inside a directory. The file name is
// the title plus the configured extension and the file body is the raw
// Markdown.
type FileStore struct {
	dir string
	ext string
}

func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	o := newOptions(opts...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create entries directory %s: %w", dir, err)
	}
	return &FileStore{
		dir: dir,
		ext: o.Extension,
	}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list entries in %s: %w", s.dir, err)
	}

	var titles []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		if !strings.HasSuffix(name, s.ext) {
			continue
		}
		title := strings.TrimSuffix(name, s.ext)
		if ValidateTitle(title) != nil {
			// hand-placed files whose name cannot round trip through Get
			continue
		}
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *FileStore) Get(ctx context.Context, title string) (string, bool, error) {
	if ValidateTitle(title) != nil {
		// an unusable key can never have been stored
		return "", false, nil
	}
	b, err := os.ReadFile(s.path(title))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read entry %q: %w", title, err)
	}
	return string(b), true, nil
}

func (s *FileStore) Save(ctx context.Context, title, content string) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}
	path := s.path(title)
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write entry %q: %w", title, err)
	}
	log.Ctx(ctx).Debug().
		Str("title", title).
		Str("stored_file", path).
		Int("size", len(content)).
		Msg("entry saved")
	return nil
}

func (s *FileStore) path(title string) string {
	return filepath.Join(s.dir, title+s.ext)
}
