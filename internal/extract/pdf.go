package extract

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

// pdfText extracts the plain-text stream of a PDF.
// Scanned PDFs without a text layer yield an empty string, not an error;
// the ingestion pipeline's minimum-length gate handles those.
func pdfText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	r, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
