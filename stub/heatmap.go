package stub

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/nfnt/resize"
)

// colour stops from low to high coverage.
var stops = []color.RGBA{
	{0x00, 0x00, 0x4B, 0xFF},
	{0xAD, 0xD8, 0xE6, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
	{0xFF, 0xA5, 0x00, 0xFF},
	{0xFF, 0x00, 0x00, 0xFF},
}

var separator = color.RGBA{0x40, 0x40, 0x40, 0xFF}

// ErrEmptyMatrix is returned when there is nothing to draw.
var ErrEmptyMatrix = errors.New("coverage matrix has no finite cells")

// HeatmapOptions sets the output size. Zero values keep one pixel per cell.
type HeatmapOptions struct {
	Width  uint
	Height uint
}

// Colormap interpolates the stop table at t in [0,1].
func Colormap(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	f := pos - float64(i)
	a, b := stops[i], stops[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + f*(float64(y)-float64(x)))) }
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 0xFF}
}

// colorRange mirrors the plotted scale: missing cells sit just below the
// minimum and the top is stretched so the mean maps near the centre.
func colorRange(m [][]float64) (vmin, vmax float64, ok bool) {
	lo, hi, sum, n := math.Inf(1), math.Inf(-1), 0.0, 0
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	mean := sum / float64(n)
	vmin = lo - 0.1
	vmax = math.Max(hi, mean+(mean-lo))
	if vmax <= vmin {
		vmax = vmin + 1
	}
	return vmin, vmax, true
}

// RenderHeatmap draws m with a separator column between the p and q halves
// and returns PNG bytes.
func RenderHeatmap(m [][]float64, opts HeatmapOptions) ([]byte, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return nil, ErrEmptyMatrix
	}
	vmin, vmax, ok := colorRange(m)
	if !ok {
		return nil, ErrEmptyMatrix
	}
	cols := len(m[0])
	half := cols / 2
	img := image.NewRGBA(image.Rect(0, 0, cols+1, len(m)))
	for y, row := range m {
		for x := 0; x <= cols; x++ {
			switch {
			case x == half:
				img.SetRGBA(x, y, separator)
			case x > half:
				img.SetRGBA(x, y, Colormap(normalize(row[x-1], vmin, vmax)))
			default:
				img.SetRGBA(x, y, Colormap(normalize(row[x], vmin, vmax)))
			}
		}
	}
	var out image.Image = img
	if opts.Width > 0 || opts.Height > 0 {
		out = resize.Resize(opts.Width, opts.Height, img, resize.NearestNeighbor)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalize(v, vmin, vmax float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = vmin
	}
	return (v - vmin) / (vmax - vmin)
}
