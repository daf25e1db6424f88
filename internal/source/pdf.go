package source

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// pdfDPI is the resolution PDF pages are imported at.
const pdfDPI = 72

// probePDF sizes a PDF by its first page.
func probePDF(path string) (Info, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return Info{}, err
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return Info{}, fmt.Errorf("document has no pages")
	}
	rect, err := doc.Bound(0)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Width:    rect.Dx() * pdfDPI / 72,
		Height:   rect.Dy() * pdfDPI / 72,
		HasVideo: true,
		Pages:    pages,
	}, nil
}
