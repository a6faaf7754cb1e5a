// ABOUTME: PDF text extraction, one page at a time in page order
// ABOUTME: Pages without extractable text contribute an empty string
package loader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// loadPDF concatenates the extracted text of each page in page order,
// joined with a newline. A page that yields no text is not an error.
func loadPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unextractable page, keep its slot so page order is preserved.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}
