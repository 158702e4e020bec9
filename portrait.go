package main

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kevin-cantwell/dotmatrix"
)

// portraitWidth is the preview width in braille cells; each cell covers
// 2x4 source pixels
const portraitWidth = 40

// filterFunc adapts an imaging operation to dotmatrix.Filter
type filterFunc func(image.Image) image.Image

// Filter applies the wrapped operation
func (f filterFunc) Filter(img image.Image) image.Image {
	return f(img)
}

// ChainFilter applies multiple filters in sequence
type ChainFilter struct {
	Filters []dotmatrix.Filter
}

// Filter applies all filters in order
func (f *ChainFilter) Filter(img image.Image) image.Image {
	result := img
	for _, filter := range f.Filters {
		result = filter.Filter(result)
	}
	return result
}

// portraitFilters prepares a generated portrait for dithering: fit to the
// braille grid, then push midtones apart so the figure separates from the
// background
func portraitFilters(width int) dotmatrix.Filter {
	return &ChainFilter{
		Filters: []dotmatrix.Filter{
			filterFunc(func(img image.Image) image.Image {
				return imaging.Resize(img, width*2, 0, imaging.Lanczos)
			}),
			filterFunc(func(img image.Image) image.Image {
				return imaging.Sharpen(img, 1.0)
			}),
			filterFunc(func(img image.Image) image.Image {
				return imaging.AdjustContrast(img, 25)
			}),
			filterFunc(func(img image.Image) image.Image {
				return imaging.AdjustGamma(img, 0.8)
			}),
		},
	}
}

// RenderPortrait draws an image as braille dots tinted with the rarity color
func RenderPortrait(img image.Image, rarity, width int) (string, error) {
	var buf bytes.Buffer

	config := &dotmatrix.Config{
		Filter: portraitFilters(width),
		Drawer: draw.FloydSteinberg,
	}
	if err := dotmatrix.NewPrinter(&buf, config).Print(img); err != nil {
		return "", fmt.Errorf("failed to render portrait: %w", err)
	}

	style := rarityStyle(rarity)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n"), nil
}

// RenderPortraitFile renders a character's cached image
func RenderPortraitFile(c *Character) (string, error) {
	if c.ArtImagePath == "" {
		return "", fmt.Errorf("%s has no cached image", c.Name)
	}

	data, err := os.ReadFile(c.ArtImagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read portrait: %w", err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return "", err
	}
	return RenderPortrait(img, c.Rarity, portraitWidth)
}
