package out_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	libraryout "readtrack/internal/modules/library/adapter/out"
)

func writePDF(t *testing.T, path string, pages int) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages),
	}
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
}

func TestPDFPageCounter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "book.pdf")
	writePDF(t, path, 3)

	n, err := libraryout.NewPDFPageCounter().CountPages(context.Background(), path)
	if err != nil {
		t.Fatalf("count pages: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 pages, got %d", n)
	}

	broken := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(broken, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	if _, err := libraryout.NewPDFPageCounter().CountPages(context.Background(), broken); err == nil {
		t.Fatalf("expected error for broken pdf")
	}
	if _, err := libraryout.NewPDFPageCounter().CountPages(context.Background(), filepath.Join(dir, "missing.pdf")); err == nil {
		t.Fatalf("expected error for missing pdf")
	}
}
