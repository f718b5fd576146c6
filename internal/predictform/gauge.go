package predictform

import (
	"fmt"
	"math"
)

// GaugeFrames is the number of frames the gauge takes to ramp to its target.
const GaugeFrames = 50

// GaugeFrame is what the gauge displays after one animation frame.
type GaugeFrame struct {
	Value float64
	Text  string
	Done  bool
}

// GaugeAt computes frame k (0-based) of the ramp towards target. Each frame
// advances by target/GaugeFrames; once the ramp has reached the target the
// frame is Done and shows the exact target.
func GaugeAt(frame, target int) GaugeFrame {
	if frame < 0 {
		frame = 0
	}
	inc := float64(target) / GaugeFrames
	if float64(frame)*inc < float64(target) {
		next := math.Min(float64(frame+1)*inc, float64(target))
		return GaugeFrame{Value: next, Text: fmt.Sprintf("%d%%", int(math.Round(next)))}
	}
	return GaugeFrame{Value: float64(target), Text: fmt.Sprintf("%d%%", target), Done: true}
}
