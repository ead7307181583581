package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrUnavailable means the OCR dependency is missing or failed to
// initialize. Callers degrade to "no OCR data" rather than failing.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Config holds tesseract invocation settings.
type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "rus+eng"
	TessdataDir string
	PSM         int // e.g. 6 for a uniform block of text; 0 = tesseract default
}

// TextRecognizer is the OCR capability injected into the extraction
// pipeline. Warmup is idempotent and safe for concurrent first callers;
// Recognize calls are blocking and not internally parallel.
type TextRecognizer interface {
	Warmup(ctx context.Context) error
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Tesseract shells out to the tesseract binary. The engine loads its
// language models on first use, so availability is probed exactly once
// behind a sync.Once and the verdict is shared by all callers.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	warmOnce sync.Once
	warmErr  error
}

func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "rus+eng"
	}
	return &Tesseract{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Warmup probes the binary once; subsequent calls return the cached verdict.
func (t *Tesseract) Warmup(ctx context.Context) error {
	t.warmOnce.Do(func() {
		t.logger.Info("initializing ocr engine", "binary", t.cfg.Tesseract, "lang", t.cfg.Lang)
		if _, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, "--version"); err != nil {
			t.logger.Error("ocr engine unavailable", "error", err, "stderr", truncate(string(errb), 1<<10))
			t.warmErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		t.logger.Info("ocr engine ready")
	})
	return t.warmErr
}

// Recognize runs tesseract over an image file and returns the raw text.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := t.Warmup(ctx); err != nil {
		return "", err
	}

	args := []string{imagePath, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 1<<10))
	}
	return strings.TrimRight(string(out), "\n\f "), nil
}
