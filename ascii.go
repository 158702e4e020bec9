package main

import (
	"math"
	"strings"
)

// asciiRamp is ordered darkest first; space is the brightest cell
const asciiRamp = "@%#*+=-:. "

const (
	placeholderWidth  = 64
	placeholderHeight = 32
	artWidth          = 64
)

// brightnessToChar maps a 0..1 brightness to a ramp character
func brightnessToChar(value float64) byte {
	value = clamp(value, 0, 1)
	index := int(value * float64(len(asciiRamp)-1))
	return asciiRamp[index]
}

// RenderASCII downsamples a grayscale buffer (row-major, 0..1) into
// targetWidth columns using nearest-neighbour sampling.
// Rows are sampled twice as sparsely as columns since terminal cells are
// roughly twice as tall as they are wide.
func RenderASCII(grayscale []float64, width, height, targetWidth int) string {
	if width <= 0 || height <= 0 || len(grayscale) == 0 {
		return ""
	}
	if targetWidth < 1 {
		targetWidth = 1
	}

	scaleX := float64(width) / float64(targetWidth)
	scaleY := scaleX * 2
	targetHeight := int(math.Round(float64(height) / scaleY))
	if targetHeight < 1 {
		targetHeight = 1
	}

	var sb strings.Builder
	sb.Grow((targetWidth + 1) * targetHeight)
	for y := 0; y < targetHeight; y++ {
		srcY := clampInt(int(math.Round(float64(y)*scaleY)), 0, height-1)
		for x := 0; x < targetWidth; x++ {
			srcX := clampInt(int(math.Round(float64(x)*scaleX)), 0, width-1)
			idx := srcY*width + srcX
			value := 0.0
			if idx < len(grayscale) {
				value = grayscale[idx]
			}
			sb.WriteByte(brightnessToChar(value))
		}
		if y+1 < targetHeight {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// PlaceholderArt renders the deterministic radial gradient used whenever no
// real image is available. Identical (name, rarity) pairs always produce
// identical bytes; the art cache relies on that to spot stale placeholders.
func PlaceholderArt(name string, rarity int) string {
	grayscale := make([]float64, placeholderWidth*placeholderHeight)
	centerX := placeholderWidth / 2.0
	centerY := placeholderHeight / 2.0
	radius := math.Min(placeholderWidth, placeholderHeight) / 2.0
	falloff := 1.2 - 0.1*float64(rarity)

	for y := 0; y < placeholderHeight; y++ {
		for x := 0; x < placeholderWidth; x++ {
			dx := (float64(x) - centerX) / radius
			dy := (float64(y) - centerY) / radius
			dist := math.Sqrt(dx*dx + dy*dy)
			grayscale[y*placeholderWidth+x] = clamp(1.2-dist*falloff, 0, 1)
		}
	}

	art := RenderASCII(grayscale, placeholderWidth, placeholderHeight, artWidth)
	return name + " (" + rarityToString(rarity) + ")\n" + art
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
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
