package out

import (
	"context"
	"fmt"
	"os"

	libraryout "readtrack/internal/modules/library/port/out"
	"rsc.io/pdf"
)

type PDFPageCounter struct{}

func NewPDFPageCounter() libraryout.PageCounter {
	return PDFPageCounter{}
}

func (PDFPageCounter) CountPages(_ context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat pdf: %w", err)
	}
	doc, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return doc.NumPage(), nil
}
