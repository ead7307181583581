package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	calls  [][]string
	out    string
	errOut string
	err    error
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return []byte(s.out), []byte(s.errOut), s.err
}

func TestRecognizeArgs(t *testing.T) {
	runner := &stubRunner{out: "ИТОГО 150.00\n\f"}
	tess := NewTesseract(Config{TessdataDir: "/opt/tessdata", PSM: 6}, nil)
	tess.runner = runner

	text, err := tess.Recognize(context.Background(), "/tmp/page.png")
	require.NoError(t, err)
	assert.Equal(t, "ИТОГО 150.00", text)

	// first call is the warmup probe, second is the recognition
	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"tesseract", "--version"}, runner.calls[0])
	assert.Equal(t, []string{
		"tesseract", "/tmp/page.png", "stdout",
		"-l", "rus+eng", "--psm", "6", "--tessdata-dir", "/opt/tessdata",
	}, runner.calls[1])
}

func TestWarmupFailureIsSticky(t *testing.T) {
	runner := &stubRunner{err: errors.New("exec: not found")}
	tess := NewTesseract(Config{}, nil)
	tess.runner = runner

	_, err := tess.Recognize(context.Background(), "a.png")
	assert.ErrorIs(t, err, ErrUnavailable)

	// the probe ran once; the verdict is cached even if the binary
	// appears later
	runner.err = nil
	_, err = tess.Recognize(context.Background(), "a.png")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, runner.calls, 1)
}

func TestRecognizeCommandFailure(t *testing.T) {
	runner := &stubRunner{}
	tess := NewTesseract(Config{}, nil)
	tess.runner = runner

	require.NoError(t, tess.Warmup(context.Background()))

	runner.err = errors.New("exit status 1")
	runner.errOut = "Error opening data file"
	_, err := tess.Recognize(context.Background(), "a.png")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "tesseract")
}
