package geometry

import (
	"image"
	"testing"
)

func TestCalculateStripPlan_SingleColumn(t *testing.T) {
	plan, err := CalculateStripPlan(3, 1, 400, 300, 20)
	if err != nil {
		t.Fatalf("CalculateStripPlan: %v", err)
	}
	if plan.Columns != 1 || plan.Rows != 3 {
		t.Errorf("grid = %dx%d, want 1x3", plan.Columns, plan.Rows)
	}
	if plan.Width != 440 {
		t.Errorf("Width = %d, want 440", plan.Width)
	}
	if plan.Height != 3*300+4*20 {
		t.Errorf("Height = %d, want %d", plan.Height, 3*300+4*20)
	}
}

func TestCalculateStripPlan_RoundsRowsUp(t *testing.T) {
	cases := []struct {
		count, columns   int
		wantCols, wantRs int
	}{
		{4, 2, 2, 2},
		{5, 2, 2, 3},
		{3, 5, 3, 1}, // columns clamped to count
		{2, 0, 1, 2}, // columns clamped to 1
	}
	for _, tc := range cases {
		plan, err := CalculateStripPlan(tc.count, tc.columns, 10, 10, 0)
		if err != nil {
			t.Fatalf("CalculateStripPlan(%d, %d): %v", tc.count, tc.columns, err)
		}
		if plan.Columns != tc.wantCols || plan.Rows != tc.wantRs {
			t.Errorf("CalculateStripPlan(%d, %d) = %dx%d, want %dx%d",
				tc.count, tc.columns, plan.Columns, plan.Rows, tc.wantCols, tc.wantRs)
		}
	}
}

func TestCalculateStripPlan_Invalid(t *testing.T) {
	cases := []struct {
		name                              string
		count, columns, cellW, cellH, mar int
	}{
		{"no_photos", 0, 1, 10, 10, 0},
		{"zero_width", 2, 1, 0, 10, 0},
		{"negative_height", 2, 1, 10, -1, 0},
		{"negative_margin", 2, 1, 10, 10, -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CalculateStripPlan(tc.count, tc.columns, tc.cellW, tc.cellH, tc.mar); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCellRect_NoOverlap(t *testing.T) {
	plan, err := CalculateStripPlan(5, 2, 100, 80, 10)
	if err != nil {
		t.Fatal(err)
	}
	bounds := image.Rect(0, 0, plan.Width, plan.Height)
	var rects []image.Rectangle
	for i := 0; i < 5; i++ {
		r := plan.CellRect(i)
		if !r.In(bounds) {
			t.Errorf("cell %d %v outside strip %v", i, r, bounds)
		}
		for j, other := range rects {
			if r.Overlaps(other) {
				t.Errorf("cell %d overlaps cell %d", i, j)
			}
		}
		rects = append(rects, r)
	}
	if got := plan.CellRect(3); got != image.Rect(120, 100, 220, 180) {
		t.Errorf("CellRect(3) = %v", got)
	}
}

func TestFitCell(t *testing.T) {
	cases := []struct {
		srcW, srcH, maxW, maxH int
		wantW, wantH           int
	}{
		{1280, 720, 640, 640, 640, 360},
		{720, 1280, 640, 640, 360, 640},
		{100, 100, 50, 80, 50, 50},
		{0, 0, 50, 80, 50, 80},
	}
	for _, tc := range cases {
		w, h := FitCell(tc.srcW, tc.srcH, tc.maxW, tc.maxH)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("FitCell(%d,%d,%d,%d) = %dx%d, want %dx%d",
				tc.srcW, tc.srcH, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
		}
	}
}
