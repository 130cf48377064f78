package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/yanqian/label-insight/internal/domain/analysis"
)

// Engine recognizes text in a PNG encoded image with the given page segmentation mode.
type Engine interface {
	Recognize(ctx context.Context, img []byte, mode gosseract.PageSegMode) (string, error)
}

// Extractor reads label text, retrying in sparse mode when block mode finds nothing.
type Extractor struct {
	engine Engine
	logger *slog.Logger
}

// NewExtractor wraps engine. Passing nil uses a gosseract engine for language.
func NewExtractor(engine Engine, language string, logger *slog.Logger) *Extractor {
	if engine == nil {
		engine = NewEngine(language)
	}
	return &Extractor{engine: engine, logger: logger.With("component", "tesseract.extractor")}
}

// Extract implements analysis.TextExtractor. Every failure is an OCR error.
func (e *Extractor) Extract(ctx context.Context, img *image.Gray) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", analysis.OCRError(fmt.Errorf("encode image: %w", err))
	}
	data := buf.Bytes()

	text, err := e.engine.Recognize(ctx, data, gosseract.PSM_SINGLE_BLOCK)
	if err != nil {
		return "", analysis.OCRError(err)
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	e.logger.Debug("block mode found no text, retrying sparse")
	text, err = e.engine.Recognize(ctx, data, gosseract.PSM_SPARSE_TEXT)
	if err != nil {
		return "", analysis.OCRError(err)
	}
	return text, nil
}

type gosseractEngine struct {
	language      string
	clientFactory func() *gosseract.Client
}

// NewEngine returns an Engine backed by the tesseract C API.
func NewEngine(language string) Engine {
	if language == "" {
		language = "eng"
	}
	return &gosseractEngine{language: language, clientFactory: gosseract.NewClient}
}

func (e *gosseractEngine) Recognize(ctx context.Context, img []byte, mode gosseract.PageSegMode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(mode); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := c.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
