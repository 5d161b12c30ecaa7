// Package heatmap renders incident density as a translucent PNG overlay
// for the map frontend.
package heatmap

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"scanner_heatmap/internal/config"
)

// Sample is one incident position to accumulate.
type Sample struct {
	Lat float64
	Lon float64
}

// Coarse accumulation cells per output pixel. Density is splatted on a
// small grid and smoothly upscaled, which reads as a heat blob rather than
// single hot pixels.
const cellSize = 8

// Render rasterizes the samples over the configured bounding box. Samples
// outside the box are ignored. The result is always Width x Height, fully
// transparent where density is zero.
func Render(samples []Sample, cfg config.HeatmapConfig) *image.NRGBA {
	west, south, east, north := cfg.BBox[0], cfg.BBox[1], cfg.BBox[2], cfg.BBox[3]
	gridW := maxInt(cfg.Width/cellSize, 1)
	gridH := maxInt(cfg.Height/cellSize, 1)

	grid := make([]float64, gridW*gridH)
	peak := 0.0
	for _, s := range samples {
		if s.Lon < west || s.Lon > east || s.Lat < south || s.Lat > north {
			continue
		}
		gx := int(float64(gridW-1) * (s.Lon - west) / (east - west))
		gy := int(float64(gridH-1) * (north - s.Lat) / (north - south))
		splat(grid, gridW, gridH, gx, gy)
		if grid[gy*gridW+gx] > peak {
			peak = grid[gy*gridW+gx]
		}
	}

	small := image.NewNRGBA(image.Rect(0, 0, gridW, gridH))
	if peak > 0 {
		for y := 0; y < gridH; y++ {
			for x := 0; x < gridW; x++ {
				small.SetNRGBA(x, y, heatColor(grid[y*gridW+x]/peak))
			}
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), small, small.Bounds(), xdraw.Over, nil)
	return out
}

// splat deposits weight into a cell and its 8 neighbors.
func splat(grid []float64, w, h, cx, cy int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			weight := 1.0
			if dx != 0 || dy != 0 {
				weight = 0.4
			}
			grid[y*w+x] += weight
		}
	}
}

// heatColor maps normalized density to a transparent green->red ramp.
func heatColor(v float64) color.NRGBA {
	if v <= 0 {
		return color.NRGBA{}
	}
	if v > 1 {
		v = 1
	}
	return color.NRGBA{
		R: uint8(255 * v),
		G: uint8(220 * (1 - v)),
		B: 0,
		A: uint8(40 + 180*v),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
