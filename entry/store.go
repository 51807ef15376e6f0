package entry

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// DefaultExtension is appended to a title to build its storage key.
const DefaultExtension = ".md"

var ErrInvalidTitle = errors.New("invalid entry title")

// Store maps entry titles to their Markdown content.
type Store interface {
	// List returns every title in the store, sorted alphabetically.
	List(ctx context.Context) ([]string, error)
	// Get returns the content stored under title. The bool is false when
	// the title is not present; that case is not an error.
	Get(ctx context.Context, title string) (string, bool, error)
	// Save creates or overwrites the entry stored under title.
	Save(ctx context.Context, title, content string) error
}

type Options struct {
	Extension string
}

type Option func(*Options)

func WithExtension(ext string) Option {
	return func(o *Options) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.Extension = ext
	}
}

func newOptions(opts ...Option) Options {
	o := Options{
		Extension: DefaultExtension,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	return o
}

// ValidateTitle reports whether title can be used as a storage key.
func ValidateTitle(title string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return ErrInvalidTitle
	case title == "." || title == "..":
		return ErrInvalidTitle
	case strings.ContainsAny(title, "/\\\x00"):
		return ErrInvalidTitle
	case filepath.Base(title) != title:
		return ErrInvalidTitle
	}
	return nil
}
