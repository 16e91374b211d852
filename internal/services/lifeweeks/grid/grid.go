// Package grid renders the life-in-weeks visualisation
//
// The image is a 52 by 90 grid, one cell per week of a 90 year reference
// lifespan, with every week already lived filled in, and a caption strip
// underneath summarising weeks, age and percentage spent
package grid

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	perr "stride/internal/platform/errors"
)

// Grid geometry
const (
	Cols = 52
	Rows = 90

	cellSize = 8
	cellGap  = 2
	margin   = 20
	caption  = 40
)

// ReferenceYears is the lifespan the grid visualises
const ReferenceYears = 90

var (
	background = color.RGBA{R: 0xFA, G: 0xFA, B: 0xF7, A: 0xFF}
	lived      = color.RGBA{R: 0x2E, G: 0x7D, B: 0x5B, A: 0xFF}
	remaining  = color.RGBA{R: 0xDD, G: 0xDD, B: 0xD6, A: 0xFF}
	ink        = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
)

// Stats summarises the numbers printed in the caption
type Stats struct {
	WeeksLived int
	AgeYears   int
	Percent    float64
}

// Caption formats the overlay line
func (s Stats) Caption() string {
	return fmt.Sprintf("Week %d · Age %d · %.1f%% of %d years", s.WeeksLived, s.AgeYears, s.Percent, ReferenceYears)
}

// StatsFor derives the caption numbers from weeks lived
func StatsFor(weeksLived int) Stats {
	return Stats{
		WeeksLived: weeksLived,
		AgeYears:   weeksLived / 52,
		Percent:    100 * float64(weeksLived) / float64(Cols*Rows),
	}
}

// Render draws the grid for the given number of weeks lived and returns PNG
// bytes; weeks beyond the grid are clamped
func Render(weeksLived int) ([]byte, error) {
	if weeksLived < 0 {
		return nil, perr.InvalidArgf("negative weeks lived %d", weeksLived)
	}
	if weeksLived > Cols*Rows {
		weeksLived = Cols * Rows
	}

	w := margin*2 + Cols*cellSize + (Cols-1)*cellGap
	h := margin*2 + Rows*cellSize + (Rows-1)*cellGap + caption
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			c := remaining
			if row*Cols+col < weeksLived {
				c = lived
			}
			x := margin + col*(cellSize+cellGap)
			y := margin + row*(cellSize+cellGap)
			cell := image.Rect(x, y, x+cellSize, y+cellSize)
			draw.Draw(img, cell, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}

	drawCaption(img, StatsFor(weeksLived).Caption(), h-caption/2)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, perr.Internalf("encode life weeks grid: %v", err)
	}
	return buf.Bytes(), nil
}

func drawCaption(img *image.RGBA, text string, baselineY int) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot: fixed.P(
			(img.Bounds().Dx()-width)/2,
			baselineY,
		),
	}
	d.DrawString(text)
}
