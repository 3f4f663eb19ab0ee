// Package roast infers the roast level of a photographed coffee bean sample
// from the mean color brightness of the frame. The heuristic is deliberate:
// resize to a fixed square, average each channel, bucket the combined
// brightness against fixed thresholds. No calibration model is involved.
package roast

import (
	"context"
	"image"
	"io"
	"math"
	"sync"
	"sync/atomic"

	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/cuppa-app/backend/internal/types"
)

// Level is a discrete roast category.
type Level string

const (
	LevelVeryLight Level = "Very Light"
	LevelLight     Level = "Light"
	LevelMedium    Level = "Medium"
	LevelDark      Level = "Dark"
	LevelVeryDark  Level = "Very Dark"
)

// ColorValues holds the mean channel intensities of the analyzed frame,
// scaled back to the 0-255 byte range.
type ColorValues struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// Result is the outcome of one analysis. It is transient: results are never
// persisted and are discarded by the client on the next capture.
type Result struct {
	RoastLevel     Level       `json:"roast_level"`
	Recommendation string      `json:"recommendation"`
	ColorValues    ColorValues `json:"color_values"`
}

// State tracks the classifier's one-time initialization.
type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// targetSize is the fixed square resolution every frame is resampled to
// before averaging. It pins the compute cost regardless of source size.
const targetSize = 224

// Classifier maps a bean photograph to a roast level. At most one analysis
// runs at a time; concurrent requests are rejected, not queued.
type Classifier struct {
	state  atomic.Int32
	initMu sync.Mutex
	busy   atomic.Bool
}

// New returns an uninitialized classifier. Call Init before Analyze.
func New() *Classifier {
	return &Classifier{}
}

// Init performs the one-time setup. It is idempotent: once the classifier is
// Ready, further calls return immediately. There is no persisted state; the
// setup only proves the resample path works.
func (c *Classifier) Init(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if State(c.state.Load()) == Ready {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.state.Store(int32(Initializing))

	// Warm-up: resample a minimal frame through the same kernel Analyze
	// uses. A failure here leaves the classifier unusable.
	probe := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if resized := resizeSquare(probe); resized == nil {
		c.state.Store(int32(Failed))
		return types.ErrClassifierNotReady
	}

	c.state.Store(int32(Ready))
	return nil
}

// State returns the current initialization state.
func (c *Classifier) State() State {
	return State(c.state.Load())
}

// Analyze decodes the image, resamples it to a fixed square, reduces it to
// per-channel means and buckets the combined brightness into a roast level.
//
// It fails with ErrClassifierNotReady before Init completes, with
// ErrAnalysisInFlight while another analysis is running, and with an
// InputError for undecodable or zero-area images.
func (c *Classifier) Analyze(ctx context.Context, r io.Reader) (*Result, error) {
	if c.State() != Ready {
		return nil, types.ErrClassifierNotReady
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, types.ErrAnalysisInFlight
	}
	defer c.busy.Store(false)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, types.NewInputError("image could not be decoded", err)
	}
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, types.NewInputError("image has zero area", nil)
	}

	// The resized buffer is function-scoped and unreferenced after the
	// reduction, so it is collectable on every exit path.
	resized := resizeSquare(src)
	mean := meanColor(resized)

	brightness := (mean[0] + mean[1] + mean[2]) / 3
	level, recommendation := Classify(brightness)

	return &Result{
		RoastLevel:     level,
		Recommendation: recommendation,
		ColorValues: ColorValues{
			Red:   roundChannel(mean[0]),
			Green: roundChannel(mean[1]),
			Blue:  roundChannel(mean[2]),
		},
	}, nil
}

// Classify buckets a brightness scalar in [0,1] into a roast level. The
// thresholds are ordered and non-overlapping; the first match wins, so every
// brightness maps to exactly one level.
func Classify(brightness float64) (Level, string) {
	switch {
	case brightness > 0.45:
		return LevelVeryLight, "Grain is too light, needs more roasting time"
	case brightness > 0.35:
		return LevelLight, "Light roast, ideal for highlighting acidic notes"
	case brightness > 0.25:
		return LevelMedium, "Optimal roast, balanced acidity and body"
	case brightness > 0.15:
		return LevelDark, "Intense roast, ideal for espresso"
	default:
		return LevelVeryDark, "Very intense roast, smoky flavors dominate"
	}
}

func resizeSquare(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// meanColor reduces the frame to normalized per-channel means in [0,1].
func meanColor(img *image.RGBA) [3]float64 {
	var sum [3]float64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[img.PixOffset(bounds.Min.X, y):img.PixOffset(bounds.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			sum[0] += float64(row[i])
			sum[1] += float64(row[i+1])
			sum[2] += float64(row[i+2])
		}
	}

	pixels := float64(bounds.Dx() * bounds.Dy())
	for i := range sum {
		sum[i] /= pixels * 255.0
	}
	return sum
}

func roundChannel(v float64) int {
	return int(math.Round(v * 255))
}
