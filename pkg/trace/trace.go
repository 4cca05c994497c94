// Package trace records how many CPU cycles the PPU spends in each LCD
// mode on every frame, for spotting scanline-timing regressions between
// runs without stepping through a debugger.
package trace

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

var modeNames = [4]string{"H-Blank", "V-Blank", "OAM-scan", "Drawing"}

var modeColors = [4]color.Color{
	color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}, // H-Blank
	color.RGBA{R: 0x1F, G: 0x77, B: 0xB4, A: 0xFF}, // V-Blank
	color.RGBA{R: 0xFF, G: 0x7F, B: 0x0E, A: 0xFF}, // OAM-scan
	color.RGBA{R: 0x2C, G: 0xA0, B: 0x2C, A: 0xFF}, // Drawing
}

// Frame holds the cycle count spent in each of the four LCD modes
// (0=H-Blank, 1=V-Blank, 2=OAM-scan, 3=Drawing) during one call to
// gameboy.Update.
type Frame struct {
	ModeCycles [4]int
}

// Recorder accumulates one Frame per call to EndFrame, sampling mode/cycle
// pairs from Observe in between. The caller drives it once per CPU.Step:
// Observe(mode, cycles) is the mode the PPU was in during the instruction
// that just ran, and the cycle count that instruction consumed.
type Recorder struct {
	frames  []Frame
	current Frame
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe attributes cycles CPU cycles to the given PPU mode within the
// frame currently being accumulated.
func (r *Recorder) Observe(mode uint8, cycles int) {
	if int(mode) < len(r.current.ModeCycles) {
		r.current.ModeCycles[mode] += cycles
	}
}

// EndFrame closes out the frame being accumulated and starts a new one.
func (r *Recorder) EndFrame() {
	r.frames = append(r.frames, r.current)
	r.current = Frame{}
}

// Frames returns every completed frame recorded so far.
func (r *Recorder) Frames() []Frame {
	return r.frames
}

// Render plots each mode's per-frame cycle count as a line and saves the
// chart as a PNG at path.
func Render(frames []Frame, path string) error {
	p := plot.New()
	p.Title.Text = "PPU mode cycles per frame"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "cycles"

	for mode := 0; mode < 4; mode++ {
		pts := make(plotter.XYs, len(frames))
		for i, fr := range frames {
			pts[i].X = float64(i)
			pts[i].Y = float64(fr.ModeCycles[mode])
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = modeColors[mode]
		p.Add(line)
		p.Legend.Add(modeNames[mode], line)
	}

	return p.Save(640, 480, path)
}
