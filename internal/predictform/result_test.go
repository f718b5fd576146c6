package predictform

import "testing"

func TestClassifyThresholds(t *testing.T) {
	for pct := 0; pct <= 100; pct++ {
		got := Classify(pct)
		switch {
		case pct < 30:
			if got.Label != "Low Risk" || got.Color != ColorLow {
				t.Fatalf("pct %d: got %+v", pct, got)
			}
		case pct < 70:
			if got.Label != "Moderate Risk" || got.Color != ColorModerate {
				t.Fatalf("pct %d: got %+v", pct, got)
			}
		default:
			if got.Label != "High Risk" || got.Color != ColorHigh {
				t.Fatalf("pct %d: got %+v", pct, got)
			}
		}
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		p    float64
		want int
	}{
		{0, 0},
		{0.3, 30},
		{0.7, 70},
		{0.82, 82},
		{0.999, 100},
		{1, 100},
		{-0.2, 0},
		{1.5, 100},
	}
	for _, tt := range tests {
		if got := Percentage(tt.p); got != tt.want {
			t.Fatalf("Percentage(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestRenderResultHighRisk(t *testing.T) {
	view := RenderResult(Result{Success: true, Prediction: true, Probability: 0.82})
	if view.Title != "High Diabetes Risk" {
		t.Fatalf("unexpected title %q", view.Title)
	}
	if view.ProbabilityText != "82%" {
		t.Fatalf("unexpected probability text %q", view.ProbabilityText)
	}
	if view.Risk.Label != "High Risk" {
		t.Fatalf("unexpected risk label %q", view.Risk.Label)
	}
	if view.IconClass != "fas fa-exclamation-triangle" {
		t.Fatalf("unexpected icon %q", view.IconClass)
	}
}

func TestRenderResultLowRisk(t *testing.T) {
	view := RenderResult(Result{Success: true, Prediction: false, Probability: 0.5})
	if view.Title != "Low Diabetes Risk" {
		t.Fatalf("unexpected title %q", view.Title)
	}
	if view.Risk.Label != "Moderate Risk" {
		t.Fatalf("unexpected risk label %q", view.Risk.Label)
	}
	if view.Degrees != 180 {
		t.Fatalf("expected 180 degrees, got %v", view.Degrees)
	}
	want := "conic-gradient(#ed8936 180deg, #e2e8f0 180deg)"
	if view.CircleBackground != want {
		t.Fatalf("background = %q, want %q", view.CircleBackground, want)
	}
	if view.IconClass != "fas fa-check-circle" {
		t.Fatalf("unexpected icon %q", view.IconClass)
	}
}
