package vision

import (
	"image"
	"math"
)

const histSize = 256

// CLAHE applies contrast limited adaptive histogram equalization over a
// tilesX x tilesY grid. Images that do not divide evenly are extended by
// reflection before the tile histograms are built; tile lookup tables are
// blended bilinearly.
func CLAHE(src *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	src = compact(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 || tilesX <= 0 || tilesY <= 0 {
		return clone(src)
	}

	ew, eh := w, h
	if w%tilesX != 0 || h%tilesY != 0 {
		ew = w + tilesX - w%tilesX
		eh = h + tilesY - h%tilesY
	}
	tileW, tileH := ew/tilesX, eh/tilesY
	area := tileW * tileH

	clip := 0
	if clipLimit > 0 {
		clip = int(clipLimit * float64(area) / histSize)
		if clip < 1 {
			clip = 1
		}
	}
	lutScale := float64(histSize-1) / float64(area)

	luts := make([][histSize]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			var hist [histSize]int
			for y := ty * tileH; y < (ty+1)*tileH; y++ {
				row := src.Pix[reflect101(y, h)*src.Stride:]
				for x := tx * tileW; x < (tx+1)*tileW; x++ {
					hist[row[reflect101(x, w)]]++
				}
			}
			if clip > 0 {
				clipHistogram(&hist, clip)
			}
			lut := &luts[ty*tilesX+tx]
			sum := 0
			for i := range hist {
				sum += hist[i]
				lut[i] = saturate(float64(sum) * lutScale)
			}
		}
	}

	xs := make([]tileCoord, w)
	for x := range xs {
		xs[x] = tileCoordFor(x, tileW, tilesX)
	}

	dst := image.NewGray(src.Rect)
	for y := 0; y < h; y++ {
		cy := tileCoordFor(y, tileH, tilesY)
		srow := src.Pix[y*src.Stride:]
		drow := dst.Pix[y*dst.Stride:]
		top1 := luts[cy.lo*tilesX:]
		top2 := luts[cy.hi*tilesX:]
		for x := 0; x < w; x++ {
			cx := xs[x]
			v := srow[x]
			upper := float64(top1[cx.lo][v])*(1-cx.frac) + float64(top1[cx.hi][v])*cx.frac
			lower := float64(top2[cx.lo][v])*(1-cx.frac) + float64(top2[cx.hi][v])*cx.frac
			drow[x] = saturate(upper*(1-cy.frac) + lower*cy.frac)
		}
	}
	return dst
}

// clipHistogram caps every bin at limit and spreads the excess evenly, with
// the remainder handed out at a fixed step from the first bin.
func clipHistogram(hist *[histSize]int, limit int) {
	clipped := 0
	for i := range hist {
		if hist[i] > limit {
			clipped += hist[i] - limit
			hist[i] = limit
		}
	}
	batch := clipped / histSize
	residual := clipped - batch*histSize
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(histSize/residual, 1)
		for i := 0; i < histSize && residual > 0; i, residual = i+step, residual-1 {
			hist[i]++
		}
	}
}

type tileCoord struct {
	lo, hi int
	frac   float64
}

func tileCoordFor(pos, tileSize, tiles int) tileCoord {
	f := float64(pos)/float64(tileSize) - 0.5
	lo := int(math.Floor(f))
	hi := lo + 1
	frac := f - float64(lo)
	if lo < 0 {
		lo = 0
	}
	if hi > tiles-1 {
		hi = tiles - 1
	}
	return tileCoord{lo: lo, hi: hi, frac: frac}
}
