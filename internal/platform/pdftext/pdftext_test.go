package pdftext

import (
	"errors"
	"strings"
	"testing"
)

func TestExtract_EmptyInput(t *testing.T) {
	_, err := Extract(nil)
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("expected ErrUnparseable, got %v", err)
	}
}

func TestExtract_NotAPDF(t *testing.T) {
	_, err := Extract([]byte("plain text, not a pdf"))
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("expected ErrUnparseable, got %v", err)
	}
}

func TestExtract_TruncatedHeader(t *testing.T) {
	_, err := Extract([]byte("%PDF-1.4"))
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("expected ErrUnparseable, got %v", err)
	}
}

func TestExtractReader_NotAPDF(t *testing.T) {
	_, err := ExtractReader(strings.NewReader("<html></html>"))
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("expected ErrUnparseable, got %v", err)
	}
}
