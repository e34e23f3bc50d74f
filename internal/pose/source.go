package pose

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Frame is one timestamped landmark set delivered by a Source.
type Frame struct {
	Landmarks *Landmarks `json:"landmarks"`
	Timestamp time.Time  `json:"-"`
}

// Source defines the interface for landmark frame producers.
type Source interface {
	// Next returns the next frame. It returns io.EOF when the source is
	// exhausted.
	Next() (Frame, error)

	// Close releases any resources held by the source.
	Close() error
}

// frameRecord is the JSONL wire format for a replayed frame.
type frameRecord struct {
	TimestampMs int64   `json:"ts_ms"`
	Landmarks   []Point `json:"landmarks"`
}

// ReplaySource reads frames from a JSONL file, one frame per line:
//
//	{"ts_ms": 1712000000000, "landmarks": [{"x":..., "y":..., "z":..., "visibility":...}, ...]}
//
// Lines with fewer than NumLandmarks points are padded with zero-visibility
// landmarks so partial captures replay without error.
type ReplaySource struct {
	f       *os.File
	scanner *bufio.Scanner
	line    int
}

// NewReplaySource opens a JSONL landmark recording for replay.
func NewReplaySource(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ReplaySource{f: f, scanner: scanner}, nil
}

// Next decodes the next frame from the recording.
func (r *ReplaySource) Next() (Frame, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec frameRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return Frame{}, fmt.Errorf("line %d: %w", r.line, err)
		}

		lm := &Landmarks{}
		n := len(rec.Landmarks)
		if n > NumLandmarks {
			n = NumLandmarks
		}
		copy(lm.Points[:], rec.Landmarks[:n])

		return Frame{
			Landmarks: lm,
			Timestamp: time.UnixMilli(rec.TimestampMs),
		}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}

// Close closes the underlying file.
func (r *ReplaySource) Close() error {
	return r.f.Close()
}

// MockSource is a test implementation of the Source interface that plays
// back a pre-scripted sequence of frames.
type MockSource struct {
	frames []Frame
	next   int
	err    error
}

// NewMockSource creates a MockSource that will emit the given frames in order.
func NewMockSource(frames []Frame) *MockSource {
	return &MockSource{frames: frames}
}

// SetError sets the error that will be returned by Next.
func (m *MockSource) SetError(err error) {
	m.err = err
}

// Next returns the next scripted frame, or io.EOF once exhausted.
func (m *MockSource) Next() (Frame, error) {
	if m.err != nil {
		return Frame{}, m.err
	}
	if m.next >= len(m.frames) {
		return Frame{}, io.EOF
	}
	f := m.frames[m.next]
	m.next++
	return f, nil
}

// Close is a no-op for the mock source.
func (m *MockSource) Close() error {
	return nil
}
