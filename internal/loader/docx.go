// ABOUTME: DOCX text extraction via the OOXML zip container
// ABOUTME: Parses word/document.xml and joins paragraph texts one per line
package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraphXML `xml:"p"`
	} `xml:"body"`
}

type paragraphXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text []textXML `xml:"t"`
}

type textXML struct {
	Content string `xml:",chardata"`
}

// loadDOCX extracts paragraph texts from a .docx file in document order,
// one paragraph per line.
func loadDOCX(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening docx %s: %w", path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("reading docx %s: %w", path, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading docx %s: %w", path, err)
		}

		return parseDocumentXML(content)
	}
	return "", fmt.Errorf("docx %s: missing word/document.xml", path)
}

// parseDocumentXML joins the text runs of each paragraph, paragraphs
// separated by newlines.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parsing document.xml: %w", err)
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				b.WriteString(text.Content)
			}
		}
	}
	return b.String(), nil
}
