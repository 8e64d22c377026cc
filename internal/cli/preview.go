package cli

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

// thumbnail scales src to fit within maxW×maxH, preserving aspect ratio.
func thumbnail(src image.Image, maxW, maxH int) *image.RGBA {
	b := src.Bounds()
	w, h := fit(b.Dx(), b.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// fit returns the largest w×h with the aspect ratio of srcW×srcH that fits
// inside maxW×maxH. Both results are at least 1.
func fit(srcW, srcH, maxW, maxH int) (w, h int) {
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return 1, 1
	}
	w, h = maxW, srcH*maxW/srcW
	if h > maxH {
		w, h = srcW*maxH/srcH, maxH
	}
	return max(w, 1), max(h, 1)
}

// halfBlocks renders img as terminal text, two pixel rows per line: the
// upper pixel is the foreground of "▀", the lower one its background.
func halfBlocks(img *image.RGBA) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img, x, y))
			if y+1 < b.Max.Y {
				style = style.Background(hexColor(img, x, y+1))
			}
			sb.WriteString(style.Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(img *image.RGBA, x, y int) lipgloss.Color {
	c := img.RGBAAt(x, y)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
