package cvbuilder

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText returns the plain text of a PDF.
func ExtractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPDFVerify, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPDFVerify, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPDFVerify, err)
	}
	return buf.String(), nil
}

// VerifyPDF checks that data is a readable PDF containing wantText.
// Whitespace is ignored in the comparison because PDF text extraction does
// not preserve word spacing reliably. An empty wantText only checks that
// some text is present.
func VerifyPDF(data []byte, wantText string) error {
	text, err := ExtractPDFText(data)
	if err != nil {
		return err
	}
	got := squash(text)
	if got == "" {
		return fmt.Errorf("%w: no extractable text", ErrPDFVerify)
	}
	if want := squash(wantText); want != "" && !strings.Contains(got, want) {
		return fmt.Errorf("%w: text %q not found", ErrPDFVerify, wantText)
	}
	return nil
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
