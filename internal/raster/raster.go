package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"autoinvoice/internal/domain"
)

// Rasterizer turns an invoice attachment into page images. Supported image
// types pass through untouched as a single page; PDFs are rendered to one
// PNG per page with pdftoppm.
type Rasterizer struct {
	runner      Runner
	pdftoppmBin string
	dpi         int
}

// New creates a Rasterizer that shells out to the given pdftoppm binary.
func New(runner Runner, pdftoppmBin string, dpi int) *Rasterizer {
	return &Rasterizer{
		runner:      runner,
		pdftoppmBin: pdftoppmBin,
		dpi:         dpi,
	}
}

// Rasterize converts attachment bytes into an ordered list of pages.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte, mimeType string) ([]domain.Page, error) {
	switch {
	case domain.IsSupportedAttachmentType(mimeType) && domain.IsImageType(mimeType):
		return []domain.Page{{
			Data:     data,
			MimeType: strings.ToLower(mimeType),
			Context:  "page 1 of 1",
		}}, nil
	case strings.EqualFold(mimeType, domain.MimeTypePDF):
		return r.rasterizePDF(ctx, data)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, mimeType)
	}
}

func (r *Rasterizer) rasterizePDF(ctx context.Context, data []byte) ([]domain.Page, error) {
	tmpDir, err := os.MkdirTemp("", "invoice-raster-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(r.dpi), "-png", pdfPath, prefix}
	if err := r.runner.Run(ctx, r.pdftoppmBin, args...); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("listing rendered pages: %w", err)
	}
	if len(matches) == 0 {
		return nil, domain.ErrNoPagesRendered
	}
	sortPageFiles(matches)

	pages := make([]domain.Page, 0, len(matches))
	total := len(matches)
	for i, path := range matches {
		img, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rendered page %s: %w", filepath.Base(path), err)
		}
		pages = append(pages, domain.Page{
			Data:     img,
			MimeType: "image/png",
			Context:  fmt.Sprintf("page %d of %d", i+1, total),
		})
	}
	return pages, nil
}

// sortPageFiles orders pdftoppm output numerically ("page-10.png" after
// "page-9.png", which lexical order gets wrong). Files whose page number
// cannot be parsed sort last.
func sortPageFiles(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		ni, oki := pageNumber(paths[i])
		nj, okj := pageNumber(paths[j])
		if oki != okj {
			return oki
		}
		return ni < nj
	})
}

func pageNumber(path string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
