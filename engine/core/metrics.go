package core

import (
	"sync"

	"github.com/spaghettifunk/tinyfx/engine/containers"
)

const AVG_COUNT int = 30

type MetricsState struct {
	MStimes            *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64

	// Renderer statistics of the last frame.
	Draws      uint32
	Blits      uint32
	Dispatches uint32
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			MStimes: containers.NewRingQueue[float64](AVG_COUNT),
		}
	})
	return nil
}

func MetricsUpdate(frameElapsedTime float64) {
	// Calculate frame ms average over the last AVG_COUNT frames
	frameMS := frameElapsedTime * 1000.0
	metricsState.MStimes.Push(frameMS)
	var sum float64
	metricsState.MStimes.Each(func(ms float64) { sum += ms })
	metricsState.MSavg = sum / float64(metricsState.MStimes.Len())

	// Calculate Frames per second.
	metricsState.AccumulatedFrameMS += frameMS
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	// Count all Frames.
	metricsState.Frames++
}

// MetricsRecordFrame stores the renderer statistics of the last frame.
func MetricsRecordFrame(draws, blits, dispatches uint32) {
	metricsState.Draws = draws
	metricsState.Blits = blits
	metricsState.Dispatches = dispatches
}

func MetricsFPS() float64 {
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	return metricsState.MSavg
}

func MetricsFrame() (float64, float64) {
	return metricsState.FPS, metricsState.MSavg
}

func MetricsRenderer() (draws, blits, dispatches uint32) {
	return metricsState.Draws, metricsState.Blits, metricsState.Dispatches
}
