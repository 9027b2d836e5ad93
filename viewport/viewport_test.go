package viewport

import (
	"math"
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestClampDPR(t *testing.T) {
	tests := []struct {
		in, max, want float64
	}{
		{1, 2, 1},
		{1.5, 2, 1.5},
		{3, 2, 2},
		{0, 2, 1},
		{-1, 2, 1},
		{math.NaN(), 2, 1},
		{math.Inf(1), 2, 1},
		{3, 0, 3},
	}
	for _, tt := range tests {
		if got := ClampDPR(tt.in, tt.max); got != tt.want {
			t.Errorf("ClampDPR(%v, %v) = %v, want %v", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestBacking(t *testing.T) {
	w, h := Size{Width: 400, Height: 300, DPR: 2}.Backing()
	if w != 800 || h != 600 {
		t.Errorf("Backing = %dx%d, want 800x600", w, h)
	}
	w, h = Size{Width: 400, Height: 300}.Backing()
	if w != 400 || h != 300 {
		t.Errorf("Backing without DPR = %dx%d, want 400x300", w, h)
	}
}

func TestResizeFilter(t *testing.T) {
	initial := Size{Width: 800, Height: 600, DPR: 1}
	const debounce = 100 * time.Millisecond

	tests := []struct {
		name    string
		next    Size
		changed bool
	}{
		{"width change", Size{Width: 801, Height: 600, DPR: 1}, true},
		{"small height change", Size{Width: 800, Height: 540, DPR: 1}, false},
		{"height change at limit", Size{Width: 800, Height: 700, DPR: 1}, false},
		{"large height change", Size{Width: 800, Height: 701, DPR: 1}, true},
		{"no change", initial, false},
		{"dpr change", Size{Width: 800, Height: 600, DPR: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewResizeFilter(initial, debounce, 100)
			f.Observe(tt.next, epoch)

			if _, _, ok := f.Poll(epoch.Add(debounce - time.Millisecond)); ok {
				t.Fatal("committed before debounce elapsed")
			}

			old, got, ok := f.Poll(epoch.Add(debounce))
			if ok != tt.changed {
				t.Fatalf("changed = %v, want %v", ok, tt.changed)
			}
			if ok {
				if old != initial || got != tt.next {
					t.Errorf("Poll = (%v, %v), want (%v, %v)", old, got, initial, tt.next)
				}
				if f.Current() != tt.next {
					t.Errorf("Current = %v, want %v", f.Current(), tt.next)
				}
			} else if f.Current() != initial {
				t.Errorf("ignored change updated Current to %v", f.Current())
			}

			if _, _, again := f.Poll(epoch.Add(time.Second)); again {
				t.Error("same change reported twice")
			}
		})
	}
}

func TestResizeFilterDPRKeepsCommittedSize(t *testing.T) {
	initial := Size{Width: 800, Height: 600, DPR: 1}
	f := NewResizeFilter(initial, 100*time.Millisecond, 100)

	f.Observe(Size{Width: 800, Height: 560, DPR: 1.5}, epoch)
	old, got, ok := f.Poll(epoch.Add(time.Second))
	if !ok {
		t.Fatal("pixel ratio change not committed")
	}
	want := Size{Width: 800, Height: 600, DPR: 1.5}
	if old != initial || got != want {
		t.Errorf("Poll = (%v, %v), want (%v, %v)", old, got, initial, want)
	}
	if f.Current() != want {
		t.Errorf("Current = %v, want %v", f.Current(), want)
	}
}

func TestResizeFilterDebouncesBursts(t *testing.T) {
	f := NewResizeFilter(Size{Width: 800, Height: 600}, 100*time.Millisecond, 100)

	now := epoch
	for w := 810.0; w <= 900; w += 10 {
		f.Observe(Size{Width: w, Height: 600}, now)
		now = now.Add(50 * time.Millisecond)
		if _, _, ok := f.Poll(now); ok {
			t.Fatalf("committed mid-burst at width %v", w)
		}
	}

	_, got, ok := f.Poll(now.Add(100 * time.Millisecond))
	if !ok || got.Width != 900 {
		t.Errorf("Poll after burst = (%v, %v), want width 900", got, ok)
	}
}

func TestResizeFilterComparesAgainstCommitted(t *testing.T) {
	f := NewResizeFilter(Size{Width: 800, Height: 600}, 0, 100)

	// Each observation is compared against the committed size, so two
	// 60px nudges in the same direction add up to a significant change.
	f.Observe(Size{Width: 800, Height: 660}, epoch)
	if _, _, ok := f.Poll(epoch); ok {
		t.Fatal("60px change committed")
	}
	f.Observe(Size{Width: 800, Height: 720}, epoch)
	if _, _, ok := f.Poll(epoch); !ok {
		t.Error("120px change from committed size not committed")
	}
}

func TestMapping(t *testing.T) {
	m := Mapping{ScreenW: 1000, ScreenH: 500, CanvasW: 500, CanvasH: 250}

	tests := []struct {
		sx, sy float32
		cx, cy float32
		ok     bool
	}{
		{0, 0, 0, 0, true},
		{1000, 500, 500, 250, true},
		{500, 100, 250, 50, true},
		{-1, 10, 0, 0, false},
		{10, 501, 0, 0, false},
	}
	for _, tt := range tests {
		cx, cy, ok := m.ScreenToCanvas(tt.sx, tt.sy)
		if ok != tt.ok || cx != tt.cx || cy != tt.cy {
			t.Errorf("ScreenToCanvas(%v,%v) = (%v,%v,%v), want (%v,%v,%v)", tt.sx, tt.sy, cx, cy, ok, tt.cx, tt.cy, tt.ok)
		}
		if ok {
			sx, sy := m.CanvasToScreen(cx, cy)
			if sx != tt.sx || sy != tt.sy {
				t.Errorf("CanvasToScreen round trip = (%v,%v), want (%v,%v)", sx, sy, tt.sx, tt.sy)
			}
		}
	}

	if _, _, ok := (Mapping{}).ScreenToCanvas(1, 1); ok {
		t.Error("degenerate mapping accepted input")
	}
}
