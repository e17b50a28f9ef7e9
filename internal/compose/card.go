package compose

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"github.com/ghostpin/ghostpin/internal/location"
	"github.com/ghostpin/ghostpin/internal/staticmap"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Card layout constants. The card sits at a fixed anchor above the bottom
// edge, matching where the on-screen overlay rendered it.
const (
	cardPadding = 12
	lineHeight  = 16
)

var (
	cardFill    = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xE6}
	textColor   = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	accentColor = color.NRGBA{R: 0x5E, G: 0x17, B: 0xEB, A: 0xFF}
)

// flatten re-rasterizes the source into a plain RGBA canvas; every overlay
// layer is painted onto this single image.
func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	return dst
}

// drawCard paints the location card: map thumbnail on the left, coordinates,
// address, watermark and render timestamp on the right.
func (e *Engine) drawCard(ctx context.Context, dst *image.RGBA, loc location.Location) {
	b := dst.Bounds()

	margin := b.Dx() / 24
	if margin < 8 {
		margin = 8
	}

	cardH := b.Dy() / 5
	if cardH < 5*lineHeight+2*cardPadding {
		cardH = 5*lineHeight + 2*cardPadding
	}
	cardW := b.Dx() - 2*margin

	card := image.Rect(margin, b.Max.Y-margin-cardH, margin+cardW, b.Max.Y-margin)
	draw.Draw(dst, card, image.NewUniform(cardFill), image.Point{}, draw.Over)

	// Map thumbnail, requested at the list-entry size and scaled to the card.
	thumbSide := cardH - 2*cardPadding
	thumbRect := image.Rect(
		card.Min.X+cardPadding,
		card.Min.Y+cardPadding,
		card.Min.X+cardPadding+thumbSide,
		card.Min.Y+cardPadding+thumbSide,
	)

	thumb := e.maps.Thumbnail(ctx, loc.Latitude, loc.Longitude,
		staticmap.DefaultZoom, staticmap.ThumbSize, staticmap.ThumbSize)
	xdraw.CatmullRom.Scale(dst, thumbRect, thumb, thumb.Bounds(), draw.Over, nil)

	textX := thumbRect.Max.X + cardPadding
	textY := card.Min.Y + cardPadding + lineHeight

	drawLine(dst, textX, textY, textColor, loc.CoordinateString())
	textY += lineHeight

	if loc.Address != "" {
		drawLine(dst, textX, textY, accentColor, loc.Address)
		textY += lineHeight
	}

	drawLine(dst, textX, textY, textColor, "Captured By GhostPin")
	textY += lineHeight

	drawLine(dst, textX, textY, textColor, e.now().Format("2006-01-02 15:04"))
}

func drawLine(dst *image.RGBA, x, y int, col color.Color, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}
