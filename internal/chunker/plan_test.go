package chunker

import (
	"math"
	"testing"
)

func TestPlanCoversDurationWithFixedOverlap(t *testing.T) {
	cases := []struct {
		duration float64
		length   int
		overlap  int
	}{
		{duration: 1, length: 600, overlap: 10},
		{duration: 600, length: 600, overlap: 10},
		{duration: 601, length: 600, overlap: 10},
		{duration: 1250.5, length: 600, overlap: 10},
		{duration: 3600, length: 600, overlap: 10},
		{duration: 95, length: 30, overlap: 5},
		{duration: 100, length: 10, overlap: 0},
	}

	for _, tc := range cases {
		windows := Plan(tc.duration, tc.length, tc.overlap)
		if len(windows) == 0 {
			t.Fatalf("Plan(%v, %d, %d) returned no windows", tc.duration, tc.length, tc.overlap)
		}
		if windows[0].Start != 0 {
			t.Fatalf("first window starts at %v", windows[0].Start)
		}
		step := float64(tc.length - tc.overlap)
		for i, w := range windows {
			if w.Index != i {
				t.Fatalf("window %d has index %d", i, w.Index)
			}
			if w.Start >= tc.duration {
				t.Fatalf("window %d starts at %v beyond duration %v", i, w.Start, tc.duration)
			}
			if want := math.Min(float64(tc.length), tc.duration-w.Start); w.Duration != want {
				t.Fatalf("window %d duration %v, want %v", i, w.Duration, want)
			}
			if i == 0 {
				continue
			}
			prev := windows[i-1]
			if w.Start-prev.Start != step {
				t.Fatalf("window %d step %v, want %v", i, w.Start-prev.Start, step)
			}
			if overlap := prev.Start + prev.Duration - w.Start; overlap != float64(tc.overlap) {
				t.Fatalf("windows %d/%d overlap %v, want %d", i-1, i, overlap, tc.overlap)
			}
		}
		last := windows[len(windows)-1]
		if end := last.Start + last.Duration; end != tc.duration {
			t.Fatalf("coverage ends at %v, want %v", end, tc.duration)
		}
		if next := last.Start + step; next < tc.duration {
			t.Fatalf("plan stopped early: next start %v < %v", next, tc.duration)
		}
	}
}

func TestPlanDefaultsProduceExpectedStarts(t *testing.T) {
	windows := Plan(1500, 600, 10)
	want := []Window{
		{Index: 0, Start: 0, Duration: 600},
		{Index: 1, Start: 590, Duration: 600},
		{Index: 2, Start: 1180, Duration: 320},
	}
	if len(windows) != len(want) {
		t.Fatalf("got %d windows, want %d", len(windows), len(want))
	}
	for i := range want {
		if windows[i] != want[i] {
			t.Fatalf("window %d = %+v, want %+v", i, windows[i], want[i])
		}
	}
}

func TestPlanRejectsDegenerateInput(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		length   int
		overlap  int
	}{
		{"zero duration", 0, 600, 10},
		{"negative duration", -5, 600, 10},
		{"zero length", 100, 0, 0},
		{"negative overlap", 100, 600, -1},
		{"overlap equals length", 100, 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Plan(tc.duration, tc.length, tc.overlap); len(got) != 0 {
				t.Fatalf("expected no windows, got %v", got)
			}
		})
	}
}
