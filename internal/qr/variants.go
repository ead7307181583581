package qr

import (
	"image"
	"image/draw"
)

// Image preprocessing for the decode cascade. Printed QR codes survive bad
// lighting and low-contrast scans far better after binarization, so the
// decoder tries a fixed ladder of variants: original, grayscale, fixed
// threshold, adaptive threshold, Otsu threshold, and CLAHE-enhanced Otsu.

type variant struct {
	name string
	fn   func(*image.Gray) image.Image
}

var grayVariants = []variant{
	{"grayscale", func(g *image.Gray) image.Image { return g }},
	{"binary_thresh", func(g *image.Gray) image.Image { return fixedThreshold(g, 127) }},
	{"adaptive_thresh", func(g *image.Gray) image.Image { return adaptiveThreshold(g, 11, 2) }},
	{"otsu_thresh", func(g *image.Gray) image.Image { return otsuThreshold(g) }},
	{"enhanced", func(g *image.Gray) image.Image { return otsuThreshold(clahe(g, 2.0, 8)) }},
}

func grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

func fixedThreshold(g *image.Gray, level uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for i, v := range g.Pix {
		if v > level {
			out.Pix[i] = 255
		}
	}
	return out
}

// adaptiveThreshold binarizes against the local mean of a block×block
// window minus a constant c, computed over an integral image.
func adaptiveThreshold(g *image.Gray, block, c int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}

	// integral[y][x] = sum of pixels above and left of (x, y)
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(g.Pix[y*g.Stride+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	half := block / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w, x+half+1), min(h, y+half+1)
			area := int64((x1 - x0) * (y1 - y0))
			sum := integral[y1*(w+1)+x1] - integral[y0*(w+1)+x1] -
				integral[y1*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := sum / area
			if int64(g.Pix[y*g.Stride+x]) > mean-int64(c) {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

func otsuThreshold(g *image.Gray) *image.Gray {
	return fixedThreshold(g, otsuLevel(g))
}

// otsuLevel picks the threshold maximizing between-class variance.
func otsuLevel(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[g.Pix[y*g.Stride+x]]++
		}
	}
	total := w * h
	if total == 0 {
		return 127
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var best float64
	var level uint8
	for i, n := range hist {
		wB += float64(n)
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(n)
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(i)
		}
	}
	return level
}

// clahe applies contrast-limited adaptive histogram equalization over a
// tiles×tiles grid with bilinear interpolation between tile mappings.
func clahe(g *image.Gray, clipLimit float64, tiles int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w < tiles || h < tiles {
		copy(out.Pix, g.Pix)
		return out
	}

	tileW, tileH := (w+tiles-1)/tiles, (h+tiles-1)/tiles
	luts := make([][256]uint8, tiles*tiles)

	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[g.Pix[y*g.Stride+x]]++
				}
			}
			n := (x1 - x0) * (y1 - y0)

			// clip and redistribute the excess evenly
			limit := int(clipLimit * float64(n) / 256)
			if limit < 1 {
				limit = 1
			}
			excess := 0
			for i := range hist {
				if hist[i] > limit {
					excess += hist[i] - limit
					hist[i] = limit
				}
			}
			share := excess / 256
			for i := range hist {
				hist[i] += share
			}

			cdf := 0
			lut := &luts[ty*tiles+tx]
			for i := range hist {
				cdf += hist[i]
				lut[i] = uint8(min(255, cdf*255/n))
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// position relative to tile centers
			fx := (float64(x) - float64(tileW)/2) / float64(tileW)
			fy := (float64(y) - float64(tileH)/2) / float64(tileH)
			tx0 := clampInt(int(fx), 0, tiles-1)
			ty0 := clampInt(int(fy), 0, tiles-1)
			tx1 := clampInt(tx0+1, 0, tiles-1)
			ty1 := clampInt(ty0+1, 0, tiles-1)
			ax := fx - float64(tx0)
			ay := fy - float64(ty0)
			if ax < 0 {
				ax = 0
			}
			if ay < 0 {
				ay = 0
			}
			if ax > 1 {
				ax = 1
			}
			if ay > 1 {
				ay = 1
			}

			v := g.Pix[y*g.Stride+x]
			v00 := float64(luts[ty0*tiles+tx0][v])
			v01 := float64(luts[ty0*tiles+tx1][v])
			v10 := float64(luts[ty1*tiles+tx0][v])
			v11 := float64(luts[ty1*tiles+tx1][v])
			top := v00 + (v01-v00)*ax
			bot := v10 + (v11-v10)*ax
			out.Pix[y*out.Stride+x] = uint8(top + (bot-top)*ay + 0.5)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
