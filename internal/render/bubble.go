package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"eurostat/internal/models"
)

var (
	bubbleFill = color.NRGBA{B: 255, A: 128}
	labelColor = color.NRGBA{A: 255}
)

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

// BubbleImage rasterizes frame onto a transparent canvas.
func BubbleImage(frame models.BubbleFrame) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	fill := image.NewUniform(bubbleFill)

	r := vector.NewRasterizer(frame.Width, frame.Height)
	for _, b := range frame.Bubbles {
		r.Reset(frame.Width, frame.Height)
		r.DrawOp = draw.Over
		circle(r, float32(b.X), float32(b.Y), float32(b.Radius))
		r.Draw(dst, dst.Bounds(), fill, image.Point{})
	}

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(labelColor), Face: face}
	for _, b := range frame.Bubbles {
		width := d.MeasureString(b.Country).Ceil()
		d.Dot = fixed.P(int(b.X)-width/2, int(b.Y)+face.Ascent/2)
		d.DrawString(b.Country)
	}
	d.Dot = fixed.P(8, 8+face.Ascent)
	d.DrawString(strconv.Itoa(frame.Year))

	return dst
}

// WriteBubblePNG encodes frame as a PNG.
func WriteBubblePNG(w io.Writer, frame models.BubbleFrame) error {
	if frame.Width <= 0 || frame.Height <= 0 {
		return fmt.Errorf("invalid canvas %dx%d", frame.Width, frame.Height)
	}
	if err := png.Encode(w, BubbleImage(frame)); err != nil {
		return fmt.Errorf("encode bubble png: %w", err)
	}
	return nil
}

func circle(r *vector.Rasterizer, cx, cy, rad float32) {
	k := float32(kappa) * rad
	r.MoveTo(cx+rad, cy)
	r.CubeTo(cx+rad, cy+k, cx+k, cy+rad, cx, cy+rad)
	r.CubeTo(cx-k, cy+rad, cx-rad, cy+k, cx-rad, cy)
	r.CubeTo(cx-rad, cy-k, cx-k, cy-rad, cx, cy-rad)
	r.CubeTo(cx+k, cy-rad, cx+rad, cy-k, cx+rad, cy)
	r.ClosePath()
}
