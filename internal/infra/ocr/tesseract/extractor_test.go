package tesseract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/yanqian/label-insight/internal/domain/analysis"
	apperrors "github.com/yanqian/label-insight/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubEngine struct {
	recognizeFn func(mode gosseract.PageSegMode) (string, error)
	modes       []gosseract.PageSegMode
}

func (s *stubEngine) Recognize(_ context.Context, img []byte, mode gosseract.PageSegMode) (string, error) {
	s.modes = append(s.modes, mode)
	if len(img) == 0 {
		return "", errors.New("empty image")
	}
	return s.recognizeFn(mode)
}

func blank() *image.Gray {
	return image.NewGray(image.Rect(0, 0, 8, 8))
}

func TestExtract_BlockModeHit(t *testing.T) {
	engine := &stubEngine{recognizeFn: func(gosseract.PageSegMode) (string, error) {
		return "INGREDIENTS: water", nil
	}}
	ext := NewExtractor(engine, "eng", newTestLogger())

	text, err := ext.Extract(context.Background(), blank())
	require.NoError(t, err)
	require.Equal(t, "INGREDIENTS: water", text)
	require.Equal(t, []gosseract.PageSegMode{gosseract.PSM_SINGLE_BLOCK}, engine.modes)
}

func TestExtract_SparseRetryOnlyAfterEmptyBlock(t *testing.T) {
	engine := &stubEngine{recognizeFn: func(mode gosseract.PageSegMode) (string, error) {
		if mode == gosseract.PSM_SINGLE_BLOCK {
			return " \n\t", nil
		}
		return "SALT", nil
	}}
	ext := NewExtractor(engine, "eng", newTestLogger())

	text, err := ext.Extract(context.Background(), blank())
	require.NoError(t, err)
	require.Equal(t, "SALT", text)
	require.Equal(t, []gosseract.PageSegMode{gosseract.PSM_SINGLE_BLOCK, gosseract.PSM_SPARSE_TEXT}, engine.modes)
}

func TestExtract_EmptySparseResultIsReturned(t *testing.T) {
	engine := &stubEngine{recognizeFn: func(gosseract.PageSegMode) (string, error) { return "", nil }}
	ext := NewExtractor(engine, "eng", newTestLogger())

	text, err := ext.Extract(context.Background(), blank())
	require.NoError(t, err)
	require.Empty(t, text)
	require.Len(t, engine.modes, 2)
}

func TestExtract_EngineFailureIsOCRError(t *testing.T) {
	engine := &stubEngine{recognizeFn: func(mode gosseract.PageSegMode) (string, error) {
		if mode == gosseract.PSM_SPARSE_TEXT {
			return "", errors.New("tessdata missing")
		}
		return "", nil
	}}
	ext := NewExtractor(engine, "eng", newTestLogger())

	_, err := ext.Extract(context.Background(), blank())
	require.True(t, apperrors.IsCode(err, analysis.CodeOCRFailed))
	require.Equal(t, "OCR Error: tessdata missing", err.Error())
}

func TestExtract_EmptyBufferFailsBeforeEngine(t *testing.T) {
	engine := &stubEngine{}
	ext := NewExtractor(engine, "eng", newTestLogger())

	_, err := ext.Extract(context.Background(), image.NewGray(image.Rect(0, 0, 0, 0)))
	require.True(t, strings.HasPrefix(err.Error(), "OCR Error:"))
	require.Empty(t, engine.modes)
}

// renderLabel draws text in basicfont and scales it up so tesseract can read it.
func renderLabel(text string, scale int) *image.Gray {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil() + 8
	h := face.Metrics().Height.Ceil() + 8
	small := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(4, 4+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	big := image.NewGray(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h*scale; y++ {
		for x := 0; x < w*scale; x++ {
			big.Pix[y*big.Stride+x] = small.Pix[(y/scale)*small.Stride+x/scale]
		}
	}
	return big
}

func TestExtract_RealTesseract(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}
	ext := NewExtractor(nil, "eng", newTestLogger())

	text, err := ext.Extract(context.Background(), renderLabel("SUGAR SALT", 4))
	require.NoError(t, err)
	require.NotEmpty(t, strings.TrimSpace(text))
}
