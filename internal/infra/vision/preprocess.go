package vision

import (
	"context"
	"fmt"
	"image"
	"log/slog"
)

const (
	claheClipLimit = 2.0
	claheTiles     = 8
)

// FallbackCounter is notified whenever enhancement fails and plain grayscale is used.
type FallbackCounter interface {
	IncPreprocessFallback()
}

// Preprocessor turns an uploaded label photo into an OCR-friendly grayscale buffer.
type Preprocessor struct {
	workers   int
	fallbacks FallbackCounter
	logger    *slog.Logger
	enhance   func(ctx context.Context, path string) (*image.Gray, error)
}

// NewPreprocessor builds a preprocessor. fallbacks may be nil.
func NewPreprocessor(workers int, fallbacks FallbackCounter, logger *slog.Logger) *Preprocessor {
	if workers < 1 {
		workers = 1
	}
	p := &Preprocessor{
		workers:   workers,
		fallbacks: fallbacks,
		logger:    logger.With("component", "vision.preprocessor"),
	}
	p.enhance = p.enhanceFile
	return p
}

// Preprocess always returns a buffer. When enhancement fails the image is
// only converted to grayscale, and an undecodable file yields a 0x0 buffer.
func (p *Preprocessor) Preprocess(ctx context.Context, path string) *image.Gray {
	img, err := p.safeEnhance(ctx, path)
	if err == nil {
		return img
	}
	p.logger.Warn("enhancement failed, using grayscale fallback", "path", path, "error", err)
	if p.fallbacks != nil {
		p.fallbacks.IncPreprocessFallback()
	}
	return p.fallback(path)
}

func (p *Preprocessor) safeEnhance(ctx context.Context, path string) (img *image.Gray, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("enhance panic: %v", r)
		}
	}()
	return p.enhance(ctx, path)
}

func (p *Preprocessor) enhanceFile(ctx context.Context, path string) (*image.Gray, error) {
	src, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	binary, threshold := OtsuBinarize(ToGray(src))
	p.logger.Debug("binarized", "threshold", threshold)
	denoised, err := NLMeans(ctx, binary, DefaultNLMeans, p.workers)
	if err != nil {
		return nil, fmt.Errorf("denoise: %w", err)
	}
	return CLAHE(denoised, claheClipLimit, claheTiles, claheTiles), nil
}

func (p *Preprocessor) fallback(path string) (out *image.Gray) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("grayscale fallback panicked", "path", path, "panic", r)
			out = emptyGray()
		}
	}()
	src, err := decodeFile(path)
	if err != nil {
		p.logger.Error("grayscale fallback failed", "path", path, "error", err)
		return emptyGray()
	}
	return ToGray(src)
}

func emptyGray() *image.Gray {
	return image.NewGray(image.Rect(0, 0, 0, 0))
}
