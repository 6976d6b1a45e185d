package web2pdf

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// ImagePreprocessor validates an image input and optionally substitutes
// a transformed copy before conversion. The cleanup function removes the
// substituted artifact; it is nil when changed is false.
type ImagePreprocessor interface {
	ValidateAndTransform(path string, resize bool, settings *PageSettings) (changed bool, newPath string, cleanup func(), err error)
}

// Compile-time interface check.
var _ ImagePreprocessor = (*rasterPreprocessor)(nil)

// renderDPI is the engine's CSS pixel density used to compute the page
// pixel budget.
const renderDPI = 96

// imageExtensions are the local-file extensions treated as image inputs.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// rasterPreprocessor decodes raster inputs to validate them and
// downscales images wider than the printable page area.
type rasterPreprocessor struct {
	tempDir string
}

func newRasterPreprocessor(tempDir string) *rasterPreprocessor {
	return &rasterPreprocessor{tempDir: tempDir}
}

// ValidateAndTransform decodes the image (failure means the input is not
// a valid raster and the conversion must not proceed) and, when resize
// is requested, scales it down to the page's pixel budget. Images that
// already fit pass through unchanged.
func (p *rasterPreprocessor) ValidateAndTransform(path string, resize bool, settings *PageSettings) (bool, string, func(), error) {
	f, err := os.Open(path) // #nosec G304 -- caller-provided input path
	if err != nil {
		return false, "", nil, fmt.Errorf("%w: opening image %s: %v", ErrPreProcessing, path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return false, "", nil, fmt.Errorf("%w: decoding image %s: %v", ErrPreProcessing, path, err)
	}

	maxWidth := pagePixelBudget(settings)
	bounds := img.Bounds()
	if !resize || bounds.Dx() <= maxWidth {
		return false, "", nil, nil
	}

	scale := float64(maxWidth) / float64(bounds.Dx())
	height := int(float64(bounds.Dy()) * scale)
	scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)

	out, err := os.CreateTemp(p.tempDir, "web2pdf-*"+filepath.Ext(path))
	if err != nil {
		return false, "", nil, fmt.Errorf("%w: creating resized image: %v", ErrPreProcessing, err)
	}
	outPath := out.Name()
	cleanup := func() { _ = os.Remove(outPath) }

	switch format {
	case "jpeg":
		err = jpeg.Encode(out, scaled, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(out, scaled, nil)
	default:
		err = png.Encode(out, scaled)
	}
	if err != nil {
		_ = out.Close()
		cleanup()
		return false, "", nil, fmt.Errorf("%w: encoding resized image: %v", ErrPreProcessing, err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return false, "", nil, fmt.Errorf("%w: writing resized image: %v", ErrPreProcessing, err)
	}

	return true, outPath, cleanup, nil
}

// pagePixelBudget is the printable width in engine pixels for the given
// page settings.
func pagePixelBudget(settings *PageSettings) int {
	if settings == nil {
		settings = DefaultPageSettings()
	}
	width, _ := settings.paperDimensions()
	printable := width - 2*settings.Margin
	if printable <= 0 {
		printable = width
	}
	return int(printable * renderDPI)
}

// isImagePath reports whether the path has a known raster extension.
func isImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
