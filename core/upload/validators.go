// Package upload validates user-supplied files before they are stored:
// size caps, extension checks, magic-byte sniffing and filename safety.
package upload

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"regexp"
	"strings"

	"github.com/NAA-del/naa-portal/core"
)

// File size limits
const (
	MaxImageSize = 5 * 1024 * 1024  // 5MB
	MaxPDFSize   = 10 * 1024 * 1024 // 10MB

	maxImageDimension = 10000
	maxFilenameLen    = 255
)

var (
	// magic bytes per allowed content type
	imageMagic = map[string][]byte{
		".jpg":  {0xff, 0xd8, 0xff},
		".jpeg": {0xff, 0xd8, 0xff},
		".png":  []byte("\x89PNG\r\n\x1a\n"),
		".webp": []byte("RIFF"),
	}
	pdfMagic = []byte("%PDF-")

	dangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\.(exe|bat|cmd|sh|php|asp|aspx|jsp|js)$`), // executables
		regexp.MustCompile(`^\.`),       // hidden files
		regexp.MustCompile(`[<>:"|?*]`), // Windows illegal characters
	}
)

func invalid(field, msg string) error {
	return core.NewValidationError(fmt.Errorf("invalid file: %s", msg), core.FieldError{Field: field, Error: msg})
}

// ValidateFileName rejects filenames with path traversal attempts, dangerous
// extensions, hidden-file prefixes, illegal characters or null bytes.
func ValidateFileName(name string) error {
	if name == "" {
		return invalid("file", "missing filename")
	}
	if strings.ContainsRune(name, 0) {
		return invalid("file", "filename contains null bytes")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return invalid("file", "filename contains illegal path characters")
	}
	for _, p := range dangerousPatterns {
		if p.MatchString(name) {
			return invalid("file", "filename contains unsafe pattern")
		}
	}
	if len(name) > maxFilenameLen {
		return invalid("file", fmt.Sprintf("filename too long (max %d characters)", maxFilenameLen))
	}
	return nil
}

// ValidateImage checks that content is a real, safe image: size cap, allowed
// extension, matching magic bytes and bounded dimensions.
func ValidateImage(name string, content []byte) error {
	if err := ValidateFileName(name); err != nil {
		return err
	}
	if len(content) > MaxImageSize {
		return invalid("file", fmt.Sprintf("image file too large (max %dMB)", MaxImageSize/1024/1024))
	}

	ext := strings.ToLower(path.Ext(name))
	magic, ok := imageMagic[ext]
	if !ok {
		return invalid("file", "invalid image type; only JPEG, PNG and WebP are allowed")
	}
	if !bytes.HasPrefix(content, magic) {
		return invalid("file", "file appears to be corrupted or not a valid "+strings.TrimPrefix(ext, "."))
	}

	// WebP decoding is not registered; the RIFF header check above stands alone.
	if ext != ".webp" {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
		if err != nil {
			return invalid("file", "cannot read image dimensions")
		}
		if cfg.Width > maxImageDimension || cfg.Height > maxImageDimension {
			return invalid("file", fmt.Sprintf("image dimensions too large (max %dx%d)", maxImageDimension, maxImageDimension))
		}
	}
	return nil
}

// ValidatePDF checks that content is a real PDF document.
func ValidatePDF(name string, content []byte) error {
	if err := ValidateFileName(name); err != nil {
		return err
	}
	if len(content) > MaxPDFSize {
		return invalid("file", fmt.Sprintf("PDF file too large (max %dMB)", MaxPDFSize/1024/1024))
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return invalid("file", "file must have .pdf extension")
	}
	if !bytes.HasPrefix(content, pdfMagic) {
		return invalid("file", "file is not a valid PDF document")
	}
	return nil
}

// ValidateCertificate accepts either a PDF or an image upload.
func ValidateCertificate(name string, content []byte) error {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".pdf":
		return ValidatePDF(name, content)
	case ".jpg", ".jpeg", ".png", ".webp":
		return ValidateImage(name, content)
	default:
		return invalid("file", "invalid file type; only PDF and images (JPEG, PNG, WebP) are allowed")
	}
}
