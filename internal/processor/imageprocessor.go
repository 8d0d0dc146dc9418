// imageprocessor.go - Image preprocessing for better vision-model accuracy

package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bosocmputer/credit_analyzer_gemini/configs"
	"github.com/disintegration/imaging"
)

// PreprocessImage loads a scanned page and enhances it for extraction. The
// enhancement level adapts to the measured image quality. Returns the encoded
// image bytes and their MIME type.
func PreprocessImage(imagePath string) ([]byte, string, error) {
	if !configs.ENABLE_IMAGE_PREPROCESSING {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image: %w", err)
		}
		return data, MimeTypeForFile(imagePath), nil
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}

	// Resize so the longest side fits the configured limit
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	maxDimension := configs.MAX_IMAGE_DIMENSION

	if width > maxDimension || height > maxDimension {
		if width > height {
			img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
		}
	}

	// Scanned financial documents vary a lot; pick the enhancement level
	// from measured brightness/contrast instead of applying one recipe.
	quality := analyzeImageQuality(img)
	switch {
	case quality < 50:
		img = applyAggressiveEnhancement(img)
	case quality < 75:
		img = applyStandardEnhancement(img)
	default:
		img = applyLightEnhancement(img)
	}

	// Final sharpening pass for small print (amounts, footnotes)
	img = imaging.Sharpen(img, 1.0)

	var buf bytes.Buffer
	mimeType := "image/jpeg"
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png":
		err = png.Encode(&buf, img)
		mimeType = "image/png"
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode processed image: %w", err)
	}

	return buf.Bytes(), mimeType, nil
}

// MimeTypeForFile maps a file extension to its MIME type
func MimeTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// analyzeImageQuality returns a quality score (0-100) from sampled
// brightness and contrast. Every 10th pixel is sampled for speed.
func analyzeImageQuality(img image.Image) float64 {
	bounds := img.Bounds()

	var totalBrightness float64
	minBrightness := 255.0
	maxBrightness := 0.0
	pixelCount := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y += 10 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 10 {
			r, g, b, _ := img.At(x, y).RGBA()
			brightness := (float64(r>>8) + float64(g>>8) + float64(b>>8)) / 3.0

			totalBrightness += brightness
			if brightness < minBrightness {
				minBrightness = brightness
			}
			if brightness > maxBrightness {
				maxBrightness = brightness
			}
			pixelCount++
		}
	}

	if pixelCount == 0 {
		return 0
	}

	avgBrightness := totalBrightness / float64(pixelCount)
	contrast := maxBrightness - minBrightness

	// Ideal: avgBrightness = 128, contrast = 200+
	brightnessScore := 100.0 - math.Abs(avgBrightness-128.0)/1.28
	contrastScore := math.Min(contrast/2.0, 100.0)

	return brightnessScore*0.4 + contrastScore*0.6
}

// applyLightEnhancement for good quality scans
func applyLightEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 2.0)
	result = imaging.AdjustContrast(result, 30)
	result = imaging.Grayscale(result)
	result = imaging.AdjustContrast(result, 20)
	result = imaging.AdjustGamma(result, 1.05)
	return result
}

// applyStandardEnhancement for medium quality scans
func applyStandardEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 3.0)
	result = imaging.AdjustContrast(result, 45)
	result = imaging.AdjustBrightness(result, 15)
	result = imaging.Grayscale(result)
	result = imaging.AdjustContrast(result, 35)
	result = imaging.AdjustGamma(result, 1.15)
	return result
}

// applyAggressiveEnhancement for poor quality scans (faxes, photos of paper)
func applyAggressiveEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 4.0)
	result = imaging.AdjustContrast(result, 60)
	result = imaging.AdjustBrightness(result, 25)
	result = imaging.Grayscale(result)
	result = imaging.AdjustContrast(result, 55)
	result = imaging.AdjustGamma(result, 1.3)
	// Blur then re-sharpen to suppress scan noise without losing edges
	result = imaging.Blur(result, 0.5)
	result = imaging.Sharpen(result, 2.5)
	return result
}
