package reader

import (
	"bytes"
	"io"

	"github.com/dslipak/pdf"
)

// readPDF extracts the plain text of every page. Statement tables are not
// recovered from PDFs; the text is only good for detection.
func readPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	text, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return "", err
	}
	return buf.String(), nil
}
