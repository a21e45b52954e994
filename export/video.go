package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/icza/mjpeg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lixenwraith/contagion/engine"
)

var stateColors = map[engine.State]color.RGBA{
	engine.Healthy:      {R: 46, G: 204, B: 113, A: 255},
	engine.Infected:     {R: 231, G: 76, B: 60, A: 255},
	engine.Asymptomatic: {R: 230, G: 126, B: 34, A: 255},
	engine.Recovered:    {R: 52, G: 152, B: 219, A: 255},
	engine.Vaccinated:   {R: 243, G: 156, B: 18, A: 255},
}

var frameBackground = color.RGBA{R: 16, G: 16, B: 24, A: 255}

// VideoWriter streams rendered field frames into an MJPEG AVI file.
// One Frame call per captured tick; Close finalizes the container.
type VideoWriter struct {
	avi    mjpeg.AviWriter
	width  int
	height int
	canvas *image.RGBA
	jpgBuf bytes.Buffer
}

// NewVideoWriter creates the AVI at path with the given frame size and rate.
func NewVideoWriter(path string, width, height, fps int) (*VideoWriter, error) {
	avi, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("export: create AVI %s: %w", path, err)
	}
	return &VideoWriter{
		avi:    avi,
		width:  width,
		height: height,
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Frame renders the engine's current field state and appends it as one frame.
func (w *VideoWriter) Frame(e *engine.Engine) error {
	draw.Draw(w.canvas, w.canvas.Bounds(), &image.Uniform{frameBackground}, image.Point{}, draw.Src)

	cfg := e.Config()
	scaleX := float64(w.width) / cfg.Width
	scaleY := float64(w.height-16) / cfg.Height // bottom strip reserved for the label

	for _, a := range e.Agents() {
		w.dot(int(a.X*scaleX), int(a.Y*scaleY), stateColors[a.State])
	}

	c := e.Snapshot()
	label := fmt.Sprintf("t=%.1fs  healthy=%d infected=%d asymptomatic=%d recovered=%d vaccinated=%d",
		e.Time(), c.Healthy, c.Infected, c.Asymptomatic, c.Recovered, c.Vaccinated)
	w.text(4, w.height-4, label)

	w.jpgBuf.Reset()
	if err := jpeg.Encode(&w.jpgBuf, w.canvas, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("export: encode frame: %w", err)
	}
	if err := w.avi.AddFrame(w.jpgBuf.Bytes()); err != nil {
		return fmt.Errorf("export: add frame: %w", err)
	}
	return nil
}

// Close finalizes the AVI index; the file is unusable without it.
func (w *VideoWriter) Close() error {
	if err := w.avi.Close(); err != nil {
		return fmt.Errorf("export: close AVI: %w", err)
	}
	return nil
}

// dot fills a 3x3 square centered on (x, y), clipped to the canvas.
func (w *VideoWriter) dot(x, y int, c color.RGBA) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			px, py := x+dx, y+dy
			if px >= 0 && px < w.width && py >= 0 && py < w.height {
				w.canvas.SetRGBA(px, py, c)
			}
		}
	}
}

// text draws a basicfont label with its baseline at (x, y).
func (w *VideoWriter) text(x, y int, s string) {
	d := &font.Drawer{
		Dst:  w.canvas,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}
