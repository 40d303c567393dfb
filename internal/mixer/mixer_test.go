package mixer

import (
	"strings"
	"testing"
)

func TestFilterGraph_FadePlacement(t *testing.T) {
	// Overlay window [5,9] with 1s fade-in and 2s fade-out. The fades act
	// on the trimmed audio before adelay, so fade-in starts at 0 and
	// fade-out at window length minus fade-out.
	graph := filterGraph(Options{Start: 5, End: 9, Volume: 0.5, FadeIn: 1, FadeOut: 2})

	for _, want := range []string{
		"atrim=0:4.000",
		"volume=0.50",
		"afade=t=in:st=0:d=1.000",
		"afade=t=out:st=2.000:d=2.000",
		"adelay=5000|5000",
		"amix=inputs=2:duration=first",
	} {
		if !strings.Contains(graph, want) {
			t.Errorf("filter graph missing %q:\n%s", want, graph)
		}
	}
}

func TestFilterGraph_NoFades(t *testing.T) {
	graph := filterGraph(Options{Start: 2, End: 6, Volume: 1})

	if strings.Contains(graph, "afade") {
		t.Errorf("filter graph has fades without fade options:\n%s", graph)
	}
	if !strings.Contains(graph, "adelay=2000|2000") {
		t.Errorf("filter graph missing delay:\n%s", graph)
	}
}

func TestFilterGraph_VolumeNormalized(t *testing.T) {
	tests := []struct {
		name   string
		volume float64
		want   string
	}{
		{"zero falls back to unity", 0, "volume=1.00"},
		{"above one falls back to unity", 1.5, "volume=1.00"},
		{"in range kept", 0.25, "volume=0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graph := filterGraph(Options{Start: 0, End: 1, Volume: tt.volume})
			if !strings.Contains(graph, tt.want) {
				t.Errorf("filter graph missing %q:\n%s", tt.want, graph)
			}
		})
	}
}
