package roast

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuppa-app/backend/internal/types"
)

func encodeSolidPNG(t *testing.T, c color.RGBA, w, h int) *bytes.Buffer {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func readyClassifier(t *testing.T) *Classifier {
	t.Helper()
	c := New()
	require.NoError(t, c.Init(context.Background()))
	require.Equal(t, Ready, c.State())
	return c
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		brightness float64
		want       Level
	}{
		{0.90, LevelVeryLight},
		{0.46, LevelVeryLight},
		{0.45, LevelLight}, // exactly at the threshold falls to the next bucket
		{0.40, LevelLight},
		{0.35, LevelMedium},
		{0.30, LevelMedium},
		{0.25, LevelDark},
		{0.20, LevelDark},
		{0.15, LevelVeryDark},
		{0.05, LevelVeryDark},
		{0.0, LevelVeryDark},
	}

	for _, tt := range tests {
		level, recommendation := Classify(tt.brightness)
		assert.Equalf(t, tt.want, level, "brightness %.2f", tt.brightness)
		assert.NotEmpty(t, recommendation)
	}
}

func TestAnalyzeSolidColors(t *testing.T) {
	c := readyClassifier(t)

	tests := []struct {
		name  string
		pixel color.RGBA
		want  Level
	}{
		{"near white", color.RGBA{230, 230, 230, 255}, LevelVeryLight},
		{"light tan", color.RGBA{110, 100, 95, 255}, LevelLight},
		{"medium brown", color.RGBA{90, 70, 55, 255}, LevelMedium},
		{"dark brown", color.RGBA{60, 45, 35, 255}, LevelDark},
		{"near black", color.RGBA{25, 20, 18, 255}, LevelVeryDark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := c.Analyze(context.Background(), encodeSolidPNG(t, tt.pixel, 64, 48))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.RoastLevel)
			assert.NotEmpty(t, result.Recommendation)
		})
	}
}

func TestAnalyzeColorValuesRounding(t *testing.T) {
	c := readyClassifier(t)

	// A solid frame survives the resample unchanged, so the reported means
	// equal the source pixel.
	result, err := c.Analyze(context.Background(), encodeSolidPNG(t, color.RGBA{128, 77, 26, 255}, 32, 32))
	require.NoError(t, err)

	assert.Equal(t, 128, result.ColorValues.Red)
	assert.Equal(t, 77, result.ColorValues.Green)
	assert.Equal(t, 26, result.ColorValues.Blue)
}

func TestAnalyzeBeforeInit(t *testing.T) {
	c := New()
	_, err := c.Analyze(context.Background(), encodeSolidPNG(t, color.RGBA{100, 100, 100, 255}, 8, 8))
	assert.ErrorIs(t, err, types.ErrClassifierNotReady)
}

func TestInitIdempotent(t *testing.T) {
	c := New()
	require.NoError(t, c.Init(context.Background()))
	require.NoError(t, c.Init(context.Background()))
	assert.Equal(t, Ready, c.State())
}

func TestAnalyzeUndecodableInput(t *testing.T) {
	c := readyClassifier(t)

	_, err := c.Analyze(context.Background(), strings.NewReader("not an image"))
	var inputErr *types.InputError
	assert.ErrorAs(t, err, &inputErr)
}

// gateReader blocks inside Read until released, letting a test hold one
// analysis open while probing a second.
type gateReader struct {
	entered chan struct{}
	release chan struct{}
	data    io.Reader
	once    bool
}

func (g *gateReader) Read(p []byte) (int, error) {
	if !g.once {
		g.once = true
		close(g.entered)
		<-g.release
	}
	return g.data.Read(p)
}

func TestAnalyzeRejectsConcurrentRequest(t *testing.T) {
	c := readyClassifier(t)

	gate := &gateReader{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		data:    encodeSolidPNG(t, color.RGBA{100, 100, 100, 255}, 8, 8),
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Analyze(context.Background(), gate)
		done <- err
	}()

	<-gate.entered

	_, err := c.Analyze(context.Background(), encodeSolidPNG(t, color.RGBA{100, 100, 100, 255}, 8, 8))
	assert.ErrorIs(t, err, types.ErrAnalysisInFlight)

	close(gate.release)
	require.NoError(t, <-done)

	// The slot frees up once the first analysis finishes.
	_, err = c.Analyze(context.Background(), encodeSolidPNG(t, color.RGBA{100, 100, 100, 255}, 8, 8))
	assert.NoError(t, err)
}
