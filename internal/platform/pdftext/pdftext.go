// Package pdftext extracts plain text from uploaded PDF documents.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnparseable indicates the bytes are not a readable PDF document.
var ErrUnparseable = errors.New("unable to parse PDF")

// MaxUploadSize bounds accepted uploads at 10MB.
const MaxUploadSize = 10 << 20

// Extract returns the text content of a PDF document. The parser panics on
// some malformed inputs, so the whole pass runs under a recover.
func Extract(fileBytes []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnparseable, r)
		}
	}()

	if len(fileBytes) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUnparseable)
	}

	reader, err := pdf.NewReader(bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// ExtractReader reads up to MaxUploadSize bytes and extracts text.
func ExtractReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return Extract(data)
}
