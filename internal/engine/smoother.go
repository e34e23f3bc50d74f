package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Smoothing constants.
const (
	// MedianWindow is the rolling buffer length per angle channel.
	MedianWindow = 5
	// SmoothAlpha is the exponential blend toward the median each frame.
	SmoothAlpha = 0.3
)

// channelSmoother holds the rolling buffer and running blend for one angle
// channel.
type channelSmoother struct {
	buf  []float64
	ema  float64
	init bool
}

// push adds a raw sample, dropping the oldest beyond capacity, and returns
// the new smoothed value.
func (c *channelSmoother) push(raw float64) float64 {
	if len(c.buf) >= MedianWindow {
		copy(c.buf, c.buf[1:])
		c.buf = c.buf[:MedianWindow-1]
	}
	c.buf = append(c.buf, raw)

	med := median(c.buf)
	if !c.init {
		c.ema = med
		c.init = true
	} else {
		c.ema += SmoothAlpha * (med - c.ema)
	}
	return c.ema
}

// hold returns the previous smoothed value without touching the buffer, for
// frames where the raw channel is unavailable.
func (c *channelSmoother) hold() float64 {
	if !c.init {
		return math.NaN()
	}
	return c.ema
}

// median computes the median of the buffered samples.
func median(buf []float64) float64 {
	sorted := make([]float64, len(buf))
	copy(sorted, buf)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Smoother applies per-channel median-of-5 plus exponential smoothing to raw
// angle sets. An unavailable raw sample holds the previous smoothed value
// rather than corrupting the buffer.
type Smoother struct {
	channels [NumChannels]channelSmoother
}

// Smooth processes one raw AngleSet and returns the smoothed set. Channels
// that have never seen a valid sample stay NaN.
func (s *Smoother) Smooth(raw AngleSet) AngleSet {
	var out AngleSet
	for i := range raw {
		if math.IsNaN(raw[i]) {
			out[i] = s.channels[i].hold()
			continue
		}
		out[i] = s.channels[i].push(raw[i])
	}
	return out
}
