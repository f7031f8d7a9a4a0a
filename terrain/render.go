// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
)

type ColorVec [3]float32

var colors = [...]ColorVec{
	RGB(0, 50, 115),
	RGB(0, 75, 130),
	RGB(194, 178, 128),
	RGB(90, 180, 30),
	RGB(105, 110, 115),
	Gray(220),
}

// Image converts a grid to a grayscale texture, one pixel per sample.
// Pixel (x, z) is (h*255, h*255, h*255, 255). Samples are copied exactly, so
// the image must be displayed with nearest neighbor sampling to preserve
// sample boundaries.
func Image(g *Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Depth()))

	g.Each(func(i int, h float32) {
		x, z := g.Position(i)
		v := FloatToByte(h)
		img.SetRGBA(x, z, color.RGBA{R: v, G: v, B: v, A: 255})
	})

	return img
}

// Render converts a grid to a coloured preview, interpreting samples as
// normalized heights from ocean floor to snow.
func Render(g *Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Depth()))

	for x := 0; x < g.Width(); x++ {
		for z := 0; z < g.Depth(); z++ {
			var c ColorVec

			h := g.At(x, z)
			switch {
			case h <= OceanLevel:
				c = colors[0].Lerp(colors[1], clamp(h/OceanLevel))
			case h <= SandLevel:
				c = colors[2]
			case h <= GrassLevel:
				c = colors[2].Lerp(colors[3], clamp((h-SandLevel)*12))
			case h <= RockLevel:
				c = colors[3].Lerp(colors[4], clamp((h-GrassLevel)*25))
			default:
				c = colors[4].Lerp(colors[5], clamp((h-RockLevel)*(1/(SnowLevel-RockLevel))))
			}

			img.SetRGBA(x, z, c.Color())
		}
	}

	return img
}

func Gray(v byte) ColorVec {
	return RGB(v, v, v)
}

func RGB(r, g, b byte) ColorVec {
	const factor = 1.0 / 255
	return ColorVec{float32(r) * factor, float32(g) * factor, float32(b) * factor}
}

func (vec ColorVec) String() string {
	return fmt.Sprintf("vec4(%.3f, %.3f, %.3f, 1.0)", vec[0], vec[1], vec[2])
}

func (vec ColorVec) Lerp(other ColorVec, factor float32) ColorVec {
	for i := range vec {
		vec[i] = lerp(vec[i], other[i], factor)
	}
	return vec
}

func (vec ColorVec) Color() color.RGBA {
	return color.RGBA{R: FloatToByte(vec[0]), G: FloatToByte(vec[1]), B: FloatToByte(vec[2]), A: 255}
}

func lerp(a, b, factor float32) float32 {
	return a + (b-a)*factor
}

func clamp(f float32) float32 {
	return math32.Min(math32.Max(f, 0), 1)
}

// FloatToByte quantizes a normalized sample to a byte.
func FloatToByte(f float32) byte {
	if f < 0 {
		return 0
	}
	if f > 1.0 {
		return 255
	}
	return byte(f * 255)
}
