package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/metrics"
)

func RadiusSeries(states []dynamo.State) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		out[i] = s.Radius()
	}
	return out
}

// EnergyDriftSeries is the relative specific-energy drift of every state
// against the first.
func EnergyDriftSeries(states []dynamo.State, mu float64) []float64 {
	tracker := metrics.NewEnergyDrift(mu)
	out := make([]float64, len(states))
	for i, s := range states {
		tracker.Observe(s)
		out[i] = tracker.Final()
	}
	return out
}

// StepSizes is the time between consecutive states.
func StepSizes(states []dynamo.State) []float64 {
	if len(states) < 2 {
		return nil
	}
	out := make([]float64, len(states)-1)
	for i := 1; i < len(states); i++ {
		out[i-1] = states[i].Time - states[i-1].Time
	}
	return out
}

// Downsample picks at most n evenly spaced values, always keeping the last.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	if n == 1 {
		return values[len(values)-1:]
	}
	out := make([]float64, n)
	stride := float64(len(values)-1) / float64(n-1)
	for i := range out {
		out[i] = values[int(float64(i)*stride+0.5)]
	}
	return out
}

// Plot draws values as an ASCII line chart.
func Plot(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(values, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
