package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// transcriptionPrompt is the shared prompt used by the model backends
const transcriptionPrompt = `You are reading a photographed or scanned work timesheet. Transcribe every piece of text you can see, exactly as written.

Rules:
- Keep one table row per line, with the cells of a row separated by single spaces
- Copy dates exactly as written (for example 01/02/2024); do not reformat or reorder them
- Copy times exactly as written (for example 08:00 or 17.30)
- Include headers and labels such as "CANDIDATE NAME"
- Do not summarize, correct or add anything

Return ONLY valid JSON in this exact format:
{
  "text": "first line\nsecond line"
}`

// firstPage renders page one of a PDF. Timesheets are a single sheet.
func firstPage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// decodeImage reads a photo or scan. HEIC has no stdlib decoder.
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	if isHEICFormat(data) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("unsupported image format (want JPEG, PNG, GIF, HEIC, HEIF or PDF): %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// isHEICFormat sniffs the ftyp box for a HEIC/HEIF brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// convertToPNG returns data as PNG and whether it had to be re-encoded.
// Plain PNG passes through untouched.
func convertToPNG(data []byte, mimeType string) ([]byte, bool, error) {
	var (
		img image.Image
		err error
	)
	switch {
	case mimeType == "application/pdf":
		img, err = firstPage(data)
	case mimeType == "image/png" && !isHEICFormat(data):
		return data, false, nil
	default:
		img, err = decodeImage(data, mimeType)
	}
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, false, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), true, nil
}

// prepareImageData normalizes the content type and converts the document to
// PNG when needed. Every backend reads PNG only.
func prepareImageData(imageData []byte, contentType string) ([]byte, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	pngData, converted, err := convertToPNG(imageData, mimeType)
	if err != nil {
		return nil, err
	}
	slog.Debug("Prepared document", "content_type", mimeType, "converted", converted, "bytes", len(pngData))
	return pngData, nil
}
