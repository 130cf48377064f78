package vision

import (
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"
)

// NLMeansParams configures non-local means denoising.
type NLMeansParams struct {
	H              float64
	TemplateWindow int
	SearchWindow   int
}

// DefaultNLMeans matches the label cleanup settings: h=10, 7x7 patches, 21x21 search area.
var DefaultNLMeans = NLMeansParams{H: 10, TemplateWindow: 7, SearchWindow: 21}

// weights below this are treated as zero
const weightCutoff = 0.001

const minBandRows = 16

func (p NLMeansParams) validate() error {
	if p.H <= 0 {
		return fmt.Errorf("nlmeans: h must be positive, got %v", p.H)
	}
	if p.TemplateWindow <= 0 || p.TemplateWindow%2 == 0 {
		return fmt.Errorf("nlmeans: template window must be odd and positive, got %d", p.TemplateWindow)
	}
	if p.SearchWindow <= 0 || p.SearchWindow%2 == 0 {
		return fmt.Errorf("nlmeans: search window must be odd and positive, got %d", p.SearchWindow)
	}
	return nil
}

// NLMeans denoises src by averaging every pixel with the centers of similar
// patches in its search window. Patch distance is the sum of squared
// differences and the weight is exp(-(ssd/area)/h^2). Rows are split into
// bands processed by up to workers goroutines; the result does not depend on
// the worker count.
func NLMeans(ctx context.Context, src *image.Gray, params NLMeansParams, workers int) (*image.Gray, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	src = compact(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return clone(src), nil
	}

	area := params.TemplateWindow * params.TemplateWindow
	table := weightTable(area, params.H)
	if patchesNeverMix(src, table) {
		return clone(src), nil
	}

	tr := params.TemplateWindow / 2
	sr := params.SearchWindow / 2
	pad := tr + sr
	padded, pw := padReflect101(src, pad)
	dst := image.NewGray(src.Rect)

	if workers < 1 {
		workers = 1
	}
	bandRows := (h + workers - 1) / workers
	if bandRows < minBandRows {
		bandRows = minBandRows
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += bandRows {
		y0 := y0
		y1 := min(y0+bandRows, h)
		g.Go(func() error {
			return denoiseBand(ctx, band{
				padded: padded,
				pw:     pw,
				pad:    pad,
				tr:     tr,
				sr:     sr,
				width:  w,
				y0:     y0,
				y1:     y1,
				table:  table,
				dst:    dst,
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

type band struct {
	padded []uint8
	pw     int
	pad    int
	tr     int
	sr     int
	width  int
	y0, y1 int
	table  []float64
	dst    *image.Gray
}

func denoiseBand(ctx context.Context, b band) error {
	rows := b.y1 - b.y0
	tw := 2*b.tr + 1
	iw := b.width + 2*b.tr
	ih := rows + 2*b.tr
	stride := iw + 1
	limit := int64(len(b.table))

	integral := make([]int64, (ih+1)*stride)
	sum := make([]float64, rows*b.width)
	wsum := make([]float64, rows*b.width)

	for dy := -b.sr; dy <= b.sr; dy++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for dx := -b.sr; dx <= b.sr; dx++ {
			for j := 0; j < ih; j++ {
				v := b.y0 + b.pad - b.tr + j
				rowA := b.padded[v*b.pw:]
				rowB := b.padded[(v+dy)*b.pw:]
				prev := integral[j*stride:]
				cur := integral[(j+1)*stride:]
				var run int64
				for i := 0; i < iw; i++ {
					u := b.pad - b.tr + i
					d := int64(rowA[u]) - int64(rowB[u+dx])
					run += d * d
					cur[i+1] = prev[i+1] + run
				}
			}

			for r := 0; r < rows; r++ {
				top := integral[r*stride:]
				bot := integral[(r+tw)*stride:]
				rowB := b.padded[(b.y0+b.pad+r+dy)*b.pw:]
				out := r * b.width
				for x := 0; x < b.width; x++ {
					ssd := bot[x+tw] - top[x+tw] - bot[x] + top[x]
					if ssd >= limit {
						continue
					}
					wt := b.table[ssd]
					sum[out+x] += wt * float64(rowB[b.pad+x+dx])
					wsum[out+x] += wt
				}
			}
		}
	}

	for r := 0; r < rows; r++ {
		row := b.dst.Pix[(b.y0+r)*b.dst.Stride:]
		for x := 0; x < b.width; x++ {
			idx := r*b.width + x
			row[x] = saturate(sum[idx] / wsum[idx])
		}
	}
	return nil
}

// weightTable maps a patch SSD to its weight; indexes past the end weigh zero.
func weightTable(area int, h float64) []float64 {
	denom := float64(area) * h * h
	n := int(math.Floor(-math.Log(weightCutoff) * denom))
	table := make([]float64, n+1)
	for i := range table {
		table[i] = math.Exp(-float64(i) / denom)
	}
	return table
}

// patchesNeverMix reports whether any two distinct intensities present in src
// differ so much that a single mismatched pixel drops a patch below the
// cutoff. Only identical patches then contribute and the filter returns src.
func patchesNeverMix(src *image.Gray, table []float64) bool {
	var present [256]bool
	for _, v := range src.Pix {
		present[v] = true
	}
	minGap := math.MaxInt
	last := -1
	for v := 0; v < 256; v++ {
		if !present[v] {
			continue
		}
		if last >= 0 && v-last < minGap {
			minGap = v - last
		}
		last = v
	}
	if minGap == math.MaxInt {
		return true
	}
	return minGap*minGap >= len(table)
}

func padReflect101(src *image.Gray, pad int) ([]uint8, int) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	pw, ph := w+2*pad, h+2*pad
	out := make([]uint8, pw*ph)
	for y := 0; y < ph; y++ {
		sy := reflect101(y-pad, h)
		srow := src.Pix[sy*src.Stride:]
		drow := out[y*pw:]
		for x := 0; x < pw; x++ {
			drow[x] = srow[reflect101(x-pad, w)]
		}
	}
	return out, pw
}

func saturate(v float64) uint8 {
	v = math.RoundToEven(v)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
