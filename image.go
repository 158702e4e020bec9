package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var (
	errEmptyImage       = errors.New("image data is empty")
	errUnsupportedImage = errors.New("image format not recognised")
)

// decodeImage decodes raw provider bytes (png, jpeg, gif, bmp, tiff, webp)
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, errUnsupportedImage
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}

// grayscaleBuffer converts an image to row-major luminance values in 0..1.
// imaging.Grayscale weights channels 0.299/0.587/0.114.
func grayscaleBuffer(img image.Image) ([]float64, int, int) {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	buf := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < width; x++ {
			buf[y*width+x] = float64(row[x*4]) / 255.0
		}
	}

	return buf, width, height
}

// imageToASCII decodes image bytes and rasterizes them at the standard art width
func imageToASCII(data []byte) (string, error) {
	img, err := decodeImage(data)
	if err != nil {
		return "", err
	}

	grayscale, width, height := grayscaleBuffer(img)
	art := RenderASCII(grayscale, width, height, artWidth)
	if art == "" {
		return "", fmt.Errorf("failed to rasterize %dx%d image", width, height)
	}
	return art, nil
}
