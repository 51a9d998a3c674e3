package browser

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFrame(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for x := 0; x < 8; x++ {
		for y := 0; y < 6; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRecorder_EncodeGif(t *testing.T) {
	r := NewRecorder(1000, 10)
	base := time.Now()
	r.Add(base, pngFrame(t, color.White))
	r.Add(base.Add(500*time.Millisecond), pngFrame(t, color.Black))

	data, err := r.Encode()
	require.NoError(t, err)

	g, err := gif.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, g.Image, 2)
	assert.Equal(t, []int{50, 200}, g.Delay)
	assert.Equal(t, 8, g.Image[0].Bounds().Dx())
}

func TestRecorder_EmptyAndLimits(t *testing.T) {
	r := NewRecorder(1000, 2)
	data, err := r.Encode()
	require.NoError(t, err)
	assert.Nil(t, data)

	frame := pngFrame(t, color.White)
	for i := 0; i < 5; i++ {
		r.Add(time.Now(), frame)
	}
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Wants(), "frame budget exhausted")
}

func TestRecorder_Throttles(t *testing.T) {
	r := NewRecorder(0.001, 100)
	assert.True(t, r.Wants(), "first frame uses the burst")
	assert.False(t, r.Wants())
}

func TestNetTracker(t *testing.T) {
	n := newNetTracker()
	n.started("1")
	now := time.Now()
	assert.False(t, n.idleFor(0, now.Add(time.Second)))

	n.finished("1")
	n.finished("unknown")
	assert.False(t, n.idleFor(time.Minute, time.Now()))
	assert.True(t, n.idleFor(500*time.Millisecond, time.Now().Add(time.Second)))
}
