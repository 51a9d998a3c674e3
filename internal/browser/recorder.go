package browser

import (
	"bytes"
	"context"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/image/draw"
	"golang.org/x/time/rate"
)

// Recorder keeps throttled screenshots of a session and encodes them as an
// animated GIF.
type Recorder struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	maxFrames int
	frames    []frame
	timeScale float64
}

type frame struct {
	time time.Time
	data []byte
}

// NewRecorder keeps at most fps frames per second and maxFrames in total.
func NewRecorder(fps float64, maxFrames int) *Recorder {
	return &Recorder{
		limiter:   rate.NewLimiter(rate.Limit(fps), 1),
		maxFrames: maxFrames,
		timeScale: 1,
	}
}

// Wants reports whether a frame taken now would be kept. It consumes a token.
func (r *Recorder) Wants() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) >= r.maxFrames {
		return false
	}
	return r.limiter.Allow()
}

// Add appends an encoded PNG frame.
func (r *Recorder) Add(at time.Time, png []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) >= r.maxFrames {
		return
	}
	r.frames = append(r.frames, frame{time: at, data: png})
}

// Len returns the number of frames kept.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Encode returns the recording as a GIF, or nil when no frame was kept.
func (r *Recorder) Encode() ([]byte, error) {
	r.mu.Lock()
	frames := append([]frame(nil), r.frames...)
	r.mu.Unlock()
	if len(frames) == 0 {
		return nil, nil
	}
	return makeGif(r.timeScale, png.Decode, frames...)
}

func makeGif(timeScale float64, decoder func(io.Reader) (image.Image, error), frames ...frame) ([]byte, error) {
	result := &gif.GIF{}

	for ix, f := range frames {
		delay := 2 * time.Second // hold the last frame
		if ix < len(frames)-1 {
			delay = frames[ix+1].time.Sub(f.time)
		}
		result.Delay = append(result.Delay, int(timeScale*float64(delay.Nanoseconds()/1e7))) // hundredths of a second

		img, err := decoder(bytes.NewReader(f.data))
		if err != nil {
			return nil, err
		}
		paletted := image.NewPaletted(img.Bounds(), palette.WebSafe)
		draw.Draw(paletted, paletted.Rect, img, img.Bounds().Min, draw.Over)
		result.Image = append(result.Image, paletted)
	}
	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, result)
	return buf.Bytes(), err
}

// Snapshot captures the viewport into the recording unless the frame rate
// or frame budget is exhausted.
func (s *Session) Snapshot(ctx context.Context) error {
	if !s.recorder.Wants() {
		return nil
	}
	var buf []byte
	err := s.run(ctx, 5*time.Second, "capture frame", chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithFromSurface(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return err
	}
	s.recorder.Add(time.Now(), buf)
	return nil
}

// Recording encodes the frames captured by Snapshot.
func (s *Session) Recording() ([]byte, error) {
	return s.recorder.Encode()
}
