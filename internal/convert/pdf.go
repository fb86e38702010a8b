// Package convert prepares source report PDFs for multimodal extraction:
// it validates the document, limits it to the configured page range, and
// pulls out the embedded page scans as image payloads.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// imageExtensions are the formats pdfcpu extracts scanned pages into.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// PageImages validates the report PDF and extracts the embedded images of
// its first maxPages pages into outDir, returning the extracted file paths
// in page order. Scanned reports carry one full-page image per page.
func PageImages(pdfPath, outDir string, maxPages int) ([]string, error) {
	if err := api.ValidateFile(pdfPath, nil); err != nil {
		return nil, eris.Wrapf(err, "convert: validate %s", pdfPath)
	}

	count, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: page count %s", pdfPath)
	}
	pages := count
	if maxPages > 0 && maxPages < count {
		pages = maxPages
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "convert: create dir %s", outDir)
	}

	selection := []string{fmt.Sprintf("1-%d", pages)}
	if err := api.ExtractImagesFile(pdfPath, outDir, selection, nil); err != nil {
		return nil, eris.Wrapf(err, "convert: extract images from %s", pdfPath)
	}

	paths, err := collectImages(outDir)
	if err != nil {
		return nil, err
	}

	zap.L().Info("convert: page images extracted",
		zap.String("pdf", pdfPath),
		zap.Int("pages", pages),
		zap.Int("images", len(paths)),
	)
	return paths, nil
}

// SplitPages writes each page of the report as a standalone single-page
// PDF under outDir.
func SplitPages(pdfPath, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return eris.Wrapf(err, "convert: create dir %s", outDir)
	}
	if err := api.SplitFile(pdfPath, outDir, 1, nil); err != nil {
		return eris.Wrapf(err, "convert: split %s", pdfPath)
	}
	return nil
}

// LoadImages reads the extracted image files into memory for the provider
// payload.
func LoadImages(paths []string) ([][]byte, error) {
	images := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, eris.Wrapf(err, "convert: read image %s", p)
		}
		images = append(images, data)
	}
	return images, nil
}

func collectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: read dir %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
