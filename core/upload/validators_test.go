package upload

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/NAA-del/naa-portal/core"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}
	return buf.Bytes()
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantErr  bool
	}{
		{name: "plain name", fileName: "report.pdf"},
		{name: "spaces and dashes", fileName: "annual report-2026.pdf"},
		{name: "empty", fileName: "", wantErr: true},
		{name: "null byte", fileName: "report\x00.pdf", wantErr: true},
		{name: "traversal dots", fileName: "../etc/passwd", wantErr: true},
		{name: "forward slash", fileName: "a/b.pdf", wantErr: true},
		{name: "backslash", fileName: `a\b.pdf`, wantErr: true},
		{name: "executable extension", fileName: "report.exe", wantErr: true},
		{name: "script extension uppercased", fileName: "report.SH", wantErr: true},
		{name: "hidden file", fileName: ".htaccess", wantErr: true},
		{name: "windows illegal char", fileName: "repo<rt.pdf", wantErr: true},
		{name: "too long", fileName: string(make([]byte, 256)), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.fileName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(*core.ValidationError); !ok {
					t.Errorf("ValidateFileName() error = %v, want a validation error", err)
				}
			}
		})
	}

	// the too-long case above contains null bytes; exercise length on its own
	long := "a"
	for len(long) <= maxFilenameLen {
		long += "a"
	}
	if err := ValidateFileName(long + ".pdf"); err == nil {
		t.Error("ValidateFileName() accepted an over-long name")
	}
}

func TestValidateImage(t *testing.T) {
	valid := pngBytes(t, 10, 10)

	tests := []struct {
		name     string
		fileName string
		content  []byte
		wantErr  bool
	}{
		{name: "valid png", fileName: "photo.png", content: valid},
		{name: "magic bytes mismatch", fileName: "photo.jpg", content: valid, wantErr: true},
		{name: "disallowed extension", fileName: "photo.gif", content: valid, wantErr: true},
		{name: "pdf posing as png", fileName: "photo.png", content: []byte("%PDF-1.7"), wantErr: true},
		{name: "truncated png", fileName: "photo.png", content: []byte("\x89PNG\r\n\x1a\n"), wantErr: true},
		{name: "oversized", fileName: "photo.png", content: make([]byte, MaxImageSize+1), wantErr: true},
		{name: "bad filename", fileName: "../photo.png", content: valid, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateImage(tt.fileName, tt.content); (err != nil) != tt.wantErr {
				t.Errorf("ValidateImage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePDF(t *testing.T) {
	valid := []byte("%PDF-1.7 fake body")

	tests := []struct {
		name     string
		fileName string
		content  []byte
		wantErr  bool
	}{
		{name: "valid pdf", fileName: "guidelines.pdf", content: valid},
		{name: "wrong extension", fileName: "guidelines.doc", content: valid, wantErr: true},
		{name: "wrong magic", fileName: "guidelines.pdf", content: []byte("MZ fake exe"), wantErr: true},
		{name: "oversized", fileName: "guidelines.pdf", content: append([]byte("%PDF-"), make([]byte, MaxPDFSize)...), wantErr: true},
		{name: "bad filename", fileName: "..\\guidelines.pdf", content: valid, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePDF(tt.fileName, tt.content); (err != nil) != tt.wantErr {
				t.Errorf("ValidatePDF() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCertificate(t *testing.T) {
	if err := ValidateCertificate("cert.pdf", []byte("%PDF-1.4")); err != nil {
		t.Errorf("ValidateCertificate() pdf error = %v", err)
	}
	if err := ValidateCertificate("cert.png", pngBytes(t, 4, 4)); err != nil {
		t.Errorf("ValidateCertificate() image error = %v", err)
	}
	if err := ValidateCertificate("cert.docx", []byte("PK")); err == nil {
		t.Error("ValidateCertificate() accepted a docx")
	}
}
