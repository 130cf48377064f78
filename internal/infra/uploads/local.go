package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Mirror receives a copy of every stored upload.
type Mirror interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Stored describes a saved upload.
type Stored struct {
	Name string
	Path string
	URL  string
}

// Config controls where uploads land and how they are addressed.
type Config struct {
	Dir           string
	PublicPath    string
	PublicBaseURL string
}

// LocalStore writes uploads to a directory served as static files.
type LocalStore struct {
	cfg    Config
	mirror Mirror
	newID  func() string
	logger *slog.Logger
}

// NewLocalStore creates the upload directory if needed. mirror may be nil.
func NewLocalStore(cfg Config, mirror Mirror, logger *slog.Logger) (*LocalStore, error) {
	if cfg.Dir == "" {
		cfg.Dir = "static/uploads"
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = "/static/uploads"
	}
	cfg.PublicPath = "/" + strings.Trim(cfg.PublicPath, "/")
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		cfg:    cfg,
		mirror: mirror,
		newID:  uuid.NewString,
		logger: logger.With("component", "uploads.local"),
	}, nil
}

// Save writes r under a collision free name derived from original. baseURL
// (scheme and host of the current request) is used when no public base URL
// is configured.
func (s *LocalStore) Save(ctx context.Context, original string, r io.Reader, baseURL string) (Stored, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Stored{}, fmt.Errorf("read upload: %w", err)
	}
	name := StoredName(s.newID(), original)
	full := filepath.Join(s.cfg.Dir, name)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return Stored{}, fmt.Errorf("write upload: %w", err)
	}

	if s.mirror != nil {
		contentType := mime.TypeByExtension(path.Ext(name))
		if err := s.mirror.Put(ctx, name, data, contentType); err != nil {
			s.logger.Warn("mirror upload failed", "name", name, "error", err)
		}
	}

	return Stored{Name: name, Path: full, URL: s.url(name, baseURL)}, nil
}

func (s *LocalStore) url(name, baseURL string) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(baseURL, "/")
	}
	return base + s.cfg.PublicPath + "/" + name
}
