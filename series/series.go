// Package series provides the bounded rolling sample buffer behind the
// load-pulse chart. A Series is a named, chronologically ordered sequence of
// points that evicts its oldest entries once it grows past a fixed capacity.
package series

import "errors"

// DefaultCapacity is the number of points retained per series when no
// explicit capacity is configured. At the default 100ms tick this covers
// ten seconds of history.
const DefaultCapacity = 100

// ErrOutOfRange is returned by RemoveFront when asked to remove more points
// than the series holds, or a negative count.
var ErrOutOfRange = errors.New("series: index out of range")

// Point is one (label, value) sample.
type Point struct {
	// Label is an opaque x-axis label, typically a time of day.
	Label string `json:"label"`

	// Value is the y value. NaN marks a sample that could not be read.
	Value float64 `json:"value"`
}

// Series is a named ordered collection of points with FIFO eviction.
// It is not safe for concurrent use; callers serialize mutation on a single
// goroutine and hand copies to readers.
type Series struct {
	name     string
	capacity int
	points   []Point
}

// New creates an empty series. A capacity <= 0 selects DefaultCapacity.
func New(name string, capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{
		name:     name,
		capacity: capacity,
		points:   make([]Point, 0, capacity+1),
	}
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Capacity returns the maximum number of retained points.
func (s *Series) Capacity() int { return s.capacity }

// Len returns the number of points currently held.
func (s *Series) Len() int { return len(s.points) }

// Append adds p at the newest end and then drops points from the oldest end
// until Len() <= Capacity(). The value is not inspected.
func (s *Series) Append(p Point) {
	s.points = append(s.points, p)
	if over := len(s.points) - s.capacity; over > 0 {
		// Shift in place so the backing array does not grow without bound.
		n := copy(s.points, s.points[over:])
		s.points = s.points[:n]
	}
}

// RemoveFront drops the n oldest points. Removing zero points is a no-op.
// A negative n or one larger than Len() returns ErrOutOfRange and leaves the
// series untouched.
func (s *Series) RemoveFront(n int) error {
	if n < 0 || n > len(s.points) {
		return ErrOutOfRange
	}
	if n == 0 {
		return nil
	}
	k := copy(s.points, s.points[n:])
	s.points = s.points[:k]
	return nil
}

// Points returns a copy of the points, oldest first.
func (s *Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Values returns a copy of the point values, oldest first.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Labels returns a copy of the point labels, oldest first.
func (s *Series) Labels() []string {
	out := make([]string, len(s.points))
	for i, p := range s.points {
		out[i] = p.Label
	}
	return out
}

// Last returns the newest point. The second return value is false when the
// series is empty.
func (s *Series) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Snapshot is an immutable copy of a series, safe to hand to a renderer.
type Snapshot struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Snapshot returns a copy of the series suitable for rendering.
func (s *Series) Snapshot() Snapshot {
	return Snapshot{Name: s.name, Points: s.Points()}
}

// Values returns the snapshot values, oldest first.
func (s Snapshot) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}
