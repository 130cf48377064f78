package vision

import "image"

const epsilon = 1.1920929e-07

// OtsuThreshold picks the global threshold that maximizes between-class variance.
func OtsuThreshold(src *image.Gray) uint8 {
	src = compact(src)
	total := len(src.Pix)
	if total == 0 {
		return 0
	}

	var hist [256]int
	for _, v := range src.Pix {
		hist[v]++
	}

	scale := 1.0 / float64(total)
	var mu float64
	for i, count := range hist {
		mu += float64(i) * float64(count)
	}
	mu *= scale

	var (
		q1, mu1  float64
		maxSigma float64
		best     int
	)
	for i, count := range hist {
		p := float64(count) * scale
		mu1 *= q1
		q1 += p
		q2 := 1 - q1
		if min(q1, q2) < epsilon || max(q1, q2) > 1-epsilon {
			continue
		}
		mu1 = (mu1 + float64(i)*p) / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			best = i
		}
	}
	return uint8(best)
}

// OtsuBinarize sets pixels above the Otsu threshold to 255 and the rest to 0.
func OtsuBinarize(src *image.Gray) (*image.Gray, uint8) {
	src = compact(src)
	t := OtsuThreshold(src)
	dst := image.NewGray(src.Rect)
	for i, v := range src.Pix {
		if v > t {
			dst.Pix[i] = 255
		}
	}
	return dst, t
}
