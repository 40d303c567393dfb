package transition

import (
	"math"
	"testing"
)

func TestActiveAt(t *testing.T) {
	effects := []Effect{
		{ID: "a", Name: "fade", Timestamp: 2, Duration: 1},
		{ID: "b", Name: "spin", Timestamp: 5, Duration: 0.5},
	}

	tests := []struct {
		name         string
		at           float64
		wantID       string
		wantProgress float64
		wantNil      bool
	}{
		{"before first window", 1.9, "", 0, true},
		{"window start", 2, "a", 0, false},
		{"mid window", 2.5, "a", 0.5, false},
		{"window end", 3, "a", 1, false},
		{"between windows", 4, "", 0, true},
		{"second window", 5.25, "b", 0.5, false},
		{"after all windows", 6, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveAt(effects, tt.at)
			if tt.wantNil {
				if got != nil {
					t.Errorf("ActiveAt(%v) = %+v, want nil", tt.at, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ActiveAt(%v) = nil, want effect %s", tt.at, tt.wantID)
			}
			if got.Effect.ID != tt.wantID {
				t.Errorf("effect ID = %s, want %s", got.Effect.ID, tt.wantID)
			}
			if math.Abs(got.Progress-tt.wantProgress) > 0.001 {
				t.Errorf("progress = %v, want %v", got.Progress, tt.wantProgress)
			}
		})
	}
}

func TestActiveAt_DegenerateDuration(t *testing.T) {
	effects := []Effect{
		{ID: "zero", Name: "fade", Timestamp: 1, Duration: 0},
		{ID: "nan", Name: "fade", Timestamp: 1, Duration: math.NaN()},
	}

	if got := ActiveAt(effects, 1); got != nil {
		t.Errorf("ActiveAt() = %+v for degenerate durations, want nil", got)
	}
}

func TestKnown(t *testing.T) {
	for _, name := range Names {
		if !Known(name) {
			t.Errorf("Known(%q) = false", name)
		}
	}
	if Known("wipe") {
		t.Error("Known(wipe) = true, want false")
	}
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		name     string
		effect   string
		progress float64
		check    func(s Style) bool
	}{
		{"fade midpoint fully transparent", "fade", 0.5, func(s Style) bool { return s.Opacity < 0.001 }},
		{"fade end fully opaque", "fade", 1, func(s Style) bool { return s.Opacity > 0.999 }},
		{"slide-left moves negative", "slide-left", 0.5, func(s Style) bool { return s.TranslateX < 0 }},
		{"slide-right moves positive", "slide-right", 0.5, func(s Style) bool { return s.TranslateX > 0 }},
		{"slide-up moves negative Y", "slide-up", 1, func(s Style) bool { return s.TranslateY == -1 }},
		{"slide-down moves positive Y", "slide-down", 1, func(s Style) bool { return s.TranslateY == 1 }},
		{"zoom-in grows", "zoom-in", 1, func(s Style) bool { return s.Scale == 2 }},
		{"zoom-out shrinks", "zoom-out", 1, func(s Style) bool { return s.Scale == 0.5 }},
		{"spin full rotation", "spin", 1, func(s Style) bool { return s.Rotate == 360 }},
		{"blur peaks at midpoint", "blur", 0.5, func(s Style) bool { return s.Blur == 1 }},
		{"blur clears at end", "blur", 1, func(s Style) bool { return s.Blur == 0 }},
		{"unknown name is neutral", "wipe", 0.5, func(s Style) bool {
			return s.Opacity == 1 && s.Scale == 1 && s.TranslateX == 0 && s.Rotate == 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s := StyleFor(tt.effect, tt.progress); !tt.check(s) {
				t.Errorf("StyleFor(%q, %v) = %+v", tt.effect, tt.progress, s)
			}
		})
	}
}

func TestStyleFor_ClampsProgress(t *testing.T) {
	if s := StyleFor("spin", 2); s.Rotate != 360 {
		t.Errorf("Rotate = %v with progress 2, want 360", s.Rotate)
	}
	if s := StyleFor("spin", -1); s.Rotate != 0 {
		t.Errorf("Rotate = %v with progress -1, want 0", s.Rotate)
	}
}
