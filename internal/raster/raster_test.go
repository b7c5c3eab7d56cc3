package raster

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoinvoice/internal/domain"
)

// fakeRunner stands in for pdftoppm and writes page files next to the
// output prefix it is invoked with.
type fakeRunner struct {
	pages   int
	err     error
	gotArgs []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.gotArgs = append([]string{name}, args...)
	if f.err != nil {
		return f.err
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		path := fmt.Sprintf("%s-%d.png", prefix, i)
		if err := os.WriteFile(path, []byte(fmt.Sprintf("png-%d", i)), 0o600); err != nil {
			return err
		}
	}
	return nil
}

func TestRasterize_ImagePassthrough(t *testing.T) {
	r := New(&fakeRunner{}, "pdftoppm", 150)

	pages, err := r.Rasterize(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []byte("jpeg-bytes"), pages[0].Data)
	assert.Equal(t, "image/jpeg", pages[0].MimeType)
	assert.Equal(t, "page 1 of 1", pages[0].Context)
}

func TestRasterize_PDFMultiplePages(t *testing.T) {
	runner := &fakeRunner{pages: 3}
	r := New(runner, "pdftoppm", 150)

	pages, err := r.Rasterize(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, []byte("png-1"), pages[0].Data)
	assert.Equal(t, "page 1 of 3", pages[0].Context)
	assert.Equal(t, []byte("png-3"), pages[2].Data)
	assert.Equal(t, "page 3 of 3", pages[2].Context)
	assert.Equal(t, "image/png", pages[1].MimeType)

	require.Contains(t, runner.gotArgs, "-r")
	require.Contains(t, runner.gotArgs, "150")
	require.Contains(t, runner.gotArgs, "-png")
	assert.Equal(t, "pdftoppm", runner.gotArgs[0])
}

func TestRasterize_PDFTenPlusPagesNumericOrder(t *testing.T) {
	runner := &fakeRunner{pages: 12}
	r := New(runner, "pdftoppm", 150)

	pages, err := r.Rasterize(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	require.Len(t, pages, 12)
	// Lexical order would put page-10 before page-2.
	assert.Equal(t, []byte("png-2"), pages[1].Data)
	assert.Equal(t, []byte("png-10"), pages[9].Data)
	assert.Equal(t, "page 10 of 12", pages[9].Context)
}

func TestRasterize_PDFZeroPages(t *testing.T) {
	r := New(&fakeRunner{pages: 0}, "pdftoppm", 150)

	_, err := r.Rasterize(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	assert.ErrorIs(t, err, domain.ErrNoPagesRendered)
}

func TestRasterize_PDFRenderFailure(t *testing.T) {
	r := New(&fakeRunner{err: fmt.Errorf("exit status 1")}, "pdftoppm", 150)

	_, err := r.Rasterize(context.Background(), []byte("not a pdf"), "application/pdf")
	assert.ErrorContains(t, err, "rendering pdf")
}

func TestRasterize_UnsupportedType(t *testing.T) {
	r := New(&fakeRunner{}, "pdftoppm", 150)

	_, err := r.Rasterize(context.Background(), []byte("hello"), "text/plain")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestSortPageFiles_UnparsableLast(t *testing.T) {
	paths := []string{"/tmp/x/page-2.png", "/tmp/x/page-extra.png", "/tmp/x/page-1.png"}
	sortPageFiles(paths)
	assert.Equal(t, []string{"/tmp/x/page-1.png", "/tmp/x/page-2.png", "/tmp/x/page-extra.png"}, paths)
}
