package scanning

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// TesseractConfig controls how the tesseract binary is invoked
type TesseractConfig struct {
	Binary      string // defaults to "tesseract"
	Language    string // defaults to "eng"
	PSM         int    // page segmentation mode, 0 leaves tesseract's default
	TessdataDir string
}

// Tesseract implements the Scanner interface with a local tesseract install.
// The image is piped over stdin so nothing touches disk.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
}

// NewTesseract creates a Tesseract scanner that shells out to the binary
func NewTesseract(cfg TesseractConfig) *Tesseract {
	return NewTesseractWithRunner(cfg, execRunner{})
}

// NewTesseractWithRunner creates a Tesseract scanner with a custom command runner for testing
func NewTesseractWithRunner(cfg TesseractConfig, runner Runner) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

func (t *Tesseract) args() []string {
	// tesseract stdin stdout -l <lang> [--psm N] [--tessdata-dir DIR]
	args := []string{"stdin", "stdout", "-l", t.cfg.Language}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

// ScanText runs tesseract over the document's first page
func (t *Tesseract) ScanText(ctx context.Context, data []byte, contentType string) (string, error) {
	pngData, err := prepareImageData(data, contentType)
	if err != nil {
		return "", err
	}

	out, errb, err := t.runner.Run(ctx, pngData, t.cfg.Binary, t.args()...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Close is a no-op; each scan is its own process
func (t *Tesseract) Close() error {
	return nil
}
