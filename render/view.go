// Package render draws the simulation field onto a tcell screen.
// Strictly pull-based: it reads agent positions and states each frame and
// never calls back into the engine.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/contagion/engine"
)

// trailLength bounds the per-agent FIFO of recent screen cells; trails are a
// rendering concern only and have no effect on simulation outcomes
const trailLength = 6

var stateStyles = map[engine.State]tcell.Style{
	engine.Healthy:      tcell.StyleDefault.Foreground(tcell.ColorGreen),
	engine.Infected:     tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	engine.Asymptomatic: tcell.StyleDefault.Foreground(tcell.ColorOrange),
	engine.Recovered:    tcell.StyleDefault.Foreground(tcell.ColorBlue),
	engine.Vaccinated:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
}

var stateRunes = map[engine.State]rune{
	engine.Healthy:      'o',
	engine.Infected:     '*',
	engine.Asymptomatic: '+',
	engine.Recovered:    'o',
	engine.Vaccinated:   'v',
}

var trailStyle = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)

type cellPos struct {
	x, y int
}

// View renders the field plus a one-line status bar at the bottom.
type View struct {
	screen tcell.Screen
	trails map[int][]cellPos
}

// NewView wraps an initialized screen.
func NewView(screen tcell.Screen) *View {
	return &View{
		screen: screen,
		trails: make(map[int][]cellPos),
	}
}

// Draw renders one frame from the engine's current state.
func (v *View) Draw(e *engine.Engine, paused bool) {
	v.screen.Clear()

	width, height := v.screen.Size()
	fieldHeight := height - 1
	if width <= 0 || fieldHeight <= 0 {
		v.screen.Show()
		return
	}

	cfg := e.Config()
	scaleX := float64(width) / cfg.Width
	scaleY := float64(fieldHeight) / cfg.Height

	// Trails first so live agents draw over them
	for _, trail := range v.trails {
		for _, p := range trail {
			v.screen.SetContent(p.x, p.y, '.', nil, trailStyle)
		}
	}

	for _, a := range e.Agents() {
		x := int(a.X * scaleX)
		y := int(a.Y * scaleY)
		if x >= width {
			x = width - 1
		}
		if y >= fieldHeight {
			y = fieldHeight - 1
		}

		v.pushTrail(a.ID, x, y)
		v.screen.SetContent(x, y, stateRunes[a.State], nil, stateStyles[a.State])
	}

	v.drawStatus(e, width, height-1, paused)
	v.screen.Show()
}

func (v *View) pushTrail(id, x, y int) {
	trail := v.trails[id]
	if n := len(trail); n > 0 && trail[n-1] == (cellPos{x, y}) {
		return
	}
	trail = append(trail, cellPos{x, y})
	if len(trail) > trailLength {
		trail = trail[len(trail)-trailLength:]
	}
	v.trails[id] = trail
}

func (v *View) drawStatus(e *engine.Engine, width, row int, paused bool) {
	c := e.Snapshot()
	status := fmt.Sprintf(" t=%6.1fs  H:%d I:%d A:%d R:%d V:%d", e.Time(),
		c.Healthy, c.Infected, c.Asymptomatic, c.Recovered, c.Vaccinated)
	if paused {
		status += "  [paused]"
	}
	status += "  space:pause r:reset q:quit"

	style := tcell.StyleDefault.Reverse(true)
	for i := 0; i < width; i++ {
		ch := ' '
		if i < len(status) {
			ch = rune(status[i])
		}
		v.screen.SetContent(i, row, ch, nil, style)
	}
}

// Reset drops all accumulated trails, for use when the engine restarts.
func (v *View) Reset() {
	v.trails = make(map[int][]cellPos)
}
