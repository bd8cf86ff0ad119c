package series

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestNew_DefaultsCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"explicit", 3, 3},
		{"zero falls back", 0, DefaultCapacity},
		{"negative falls back", -7, DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("cpu", tt.capacity)
			if s.Capacity() != tt.want {
				t.Errorf("Capacity() = %d, want %d", s.Capacity(), tt.want)
			}
			if s.Len() != 0 {
				t.Errorf("fresh series Len() = %d, want 0", s.Len())
			}
			if s.Name() != "cpu" {
				t.Errorf("Name() = %q, want %q", s.Name(), "cpu")
			}
		})
	}
}

// TestAppend_CapacityInvariant checks that after every append the series
// holds min(count, capacity) points and they are the most recent ones.
func TestAppend_CapacityInvariant(t *testing.T) {
	const capacity = 7
	s := New("x", capacity)

	for i := 1; i <= 25; i++ {
		s.Append(Point{Label: strconv.Itoa(i), Value: float64(i)})

		want := i
		if want > capacity {
			want = capacity
		}
		if s.Len() != want {
			t.Fatalf("after %d appends Len() = %d, want %d", i, s.Len(), want)
		}

		first := i - want + 1
		for j, p := range s.Points() {
			if p.Value != float64(first+j) {
				t.Fatalf("after %d appends point %d = %v, want %d", i, j, p.Value, first+j)
			}
		}
	}
}

func TestAppend_FIFOEvictionOrder(t *testing.T) {
	s := New("x", 100)
	for i := 1; i <= 150; i++ {
		s.Append(Point{Label: strconv.Itoa(i), Value: float64(i)})
	}

	labels := s.Labels()
	if len(labels) != 100 {
		t.Fatalf("len = %d, want 100", len(labels))
	}
	for i, l := range labels {
		if want := strconv.Itoa(51 + i); l != want {
			t.Fatalf("labels[%d] = %q, want %q", i, l, want)
		}
	}
}

func TestAppend_SmallCapacityExample(t *testing.T) {
	s := New("x", 3)
	for _, v := range []float64{10, 20, 30, 40} {
		s.Append(Point{Value: v})
	}

	got := s.Values()
	want := []float64{20, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAppend_NaNCountsTowardCapacity(t *testing.T) {
	s := New("x", 2)
	s.Append(Point{Value: 1})
	s.Append(Point{Value: math.NaN()})
	s.Append(Point{Value: math.NaN()})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	for i, v := range s.Values() {
		if !math.IsNaN(v) {
			t.Errorf("values[%d] = %v, want NaN", i, v)
		}
	}
}

func TestAppend_SeriesAreIndependent(t *testing.T) {
	a := New("a", 5)
	b := New("b", 5)
	b.Append(Point{Label: "b1", Value: 1})

	for i := 0; i < 12; i++ {
		a.Append(Point{Value: float64(i)})
	}

	if b.Len() != 1 {
		t.Errorf("b.Len() = %d, want 1", b.Len())
	}
	if p, _ := b.Last(); p.Label != "b1" {
		t.Errorf("b last label = %q, want b1", p.Label)
	}
}

func TestRemoveFront(t *testing.T) {
	tests := []struct {
		name    string
		initial int
		remove  int
		wantErr error
		wantLen int
	}{
		{"empty zero is noop", 0, 0, nil, 0},
		{"empty one out of range", 0, 1, ErrOutOfRange, 0},
		{"negative out of range", 3, -1, ErrOutOfRange, 3},
		{"too many out of range", 3, 4, ErrOutOfRange, 3},
		{"remove some", 5, 2, nil, 3},
		{"remove all", 4, 4, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("x", 10)
			for i := 0; i < tt.initial; i++ {
				s.Append(Point{Value: float64(i)})
			}

			err := s.RemoveFront(tt.remove)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RemoveFront(%d) error = %v, want %v", tt.remove, err, tt.wantErr)
			}
			if s.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", s.Len(), tt.wantLen)
			}
			if tt.wantErr == nil && tt.wantLen > 0 {
				if v := s.Values()[0]; v != float64(tt.remove) {
					t.Errorf("oldest value = %v, want %v", v, tt.remove)
				}
			}
		})
	}
}

func TestRemoveFront_ThenAppend(t *testing.T) {
	s := New("x", 3)
	s.Append(Point{Value: 1})
	if err := s.RemoveFront(1); err != nil {
		t.Fatalf("RemoveFront: %v", err)
	}
	if err := s.RemoveFront(1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("RemoveFront on empty = %v, want ErrOutOfRange", err)
	}

	s.Append(Point{Value: 2})
	if got := s.Values(); len(got) != 1 || got[0] != 2 {
		t.Errorf("values = %v, want [2]", got)
	}
}

func TestPoints_ReturnsCopy(t *testing.T) {
	s := New("x", 3)
	s.Append(Point{Label: "a", Value: 1})

	snap := s.Snapshot()
	pts := s.Points()
	pts[0].Value = 99

	s.Append(Point{Label: "b", Value: 2})
	s.Append(Point{Label: "c", Value: 3})
	s.Append(Point{Label: "d", Value: 4})

	if snap.Points[0].Label != "a" || snap.Points[0].Value != 1 {
		t.Errorf("snapshot mutated: %+v", snap.Points[0])
	}
	if len(snap.Points) != 1 {
		t.Errorf("snapshot len = %d, want 1", len(snap.Points))
	}
	if p, _ := s.Last(); p.Label != "d" {
		t.Errorf("Last() label = %q, want d", p.Label)
	}
}

func TestLast_Empty(t *testing.T) {
	s := New("x", 3)
	if _, ok := s.Last(); ok {
		t.Error("Last() on empty series reported ok")
	}
}
