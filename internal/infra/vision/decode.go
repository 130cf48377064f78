package vision

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// ToGray converts src to an origin-anchored 8-bit grayscale buffer using
// Y = 0.299 R + 0.587 G + 0.114 B in 14-bit fixed point. Alpha is ignored.
func ToGray(src image.Image) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	if g, ok := src.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], g.Pix[off:off+w])
		}
		return dst
	}

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[x] = luma(c.R, c.G, c.B)
		}
	}
	return dst
}

func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*4899 + uint32(g)*9617 + uint32(b)*1868 + 1<<13) >> 14)
}

// compact returns src itself when it is origin-anchored with a tight stride,
// otherwise a tight copy.
func compact(src *image.Gray) *image.Gray {
	b := src.Bounds()
	if b.Min == (image.Point{}) && src.Stride == b.Dx() && len(src.Pix) == b.Dx()*b.Dy() {
		return src
	}
	return ToGray(src)
}

func clone(src *image.Gray) *image.Gray {
	src = compact(src)
	dst := image.NewGray(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// reflect101 mirrors i into [0, n) without repeating the edge pixel.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
