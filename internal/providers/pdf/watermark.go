package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// A4 proportions so the background is not stretched.
const (
	watermarkWidth  = 840
	watermarkHeight = 1188
	watermarkScale  = 9.0
)

var watermarkInk = color.NRGBA{R: 150, G: 150, B: 150, A: 55}

var (
	watermarkMu    sync.Mutex
	watermarkCache = map[string][]byte{}
)

// Watermark returns a PNG page background with label drawn diagonally.
// Images are built once per label.
func Watermark(label string) ([]byte, error) {
	watermarkMu.Lock()
	defer watermarkMu.Unlock()

	if b, ok := watermarkCache[label]; ok {
		return b, nil
	}
	b, err := drawWatermark(label)
	if err != nil {
		return nil, err
	}
	watermarkCache[label] = b
	return b, nil
}

func drawWatermark(label string) ([]byte, error) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	d := &font.Drawer{Face: face, Src: image.NewUniform(watermarkInk)}

	w := d.MeasureString(label).Ceil()
	h := metrics.Height.Ceil()
	src := image.NewRGBA(image.Rect(0, 0, max(w, 1), h))
	d.Dst = src
	d.Dot = fixed.P(0, metrics.Ascent.Ceil())
	d.DrawString(label)

	// rotate -45 degrees about the source centre, scaled, onto the page centre
	theta := -math.Pi / 4
	cos := math.Cos(theta) * watermarkScale
	sin := math.Sin(theta) * watermarkScale
	cx, cy := float64(w)/2, float64(h)/2
	m := f64.Aff3{
		cos, -sin, watermarkWidth/2 - (cos*cx - sin*cy),
		sin, cos, watermarkHeight/2 - (sin*cx + cos*cy),
	}

	dst := image.NewRGBA(image.Rect(0, 0, watermarkWidth, watermarkHeight))
	xdraw.BiLinear.Transform(dst, m, src, src.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
