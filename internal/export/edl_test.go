package export

import (
	"math"
	"strings"
	"testing"

	"github.com/reelcut/reelcut-agent/internal/timeline"
)

func TestClipsFromTimeline(t *testing.T) {
	tl := timeline.New(10)
	tl.Split(3)
	tl.Split(7)
	for _, s := range tl.Segments() {
		if math.Abs(s.Start-3) < 0.01 {
			tl.DeleteSegment(s.ID)
		}
	}

	clips := ClipsFromTimeline(tl, "file:///pitch.mp4", "pitch")
	if len(clips) != 2 {
		t.Fatalf("clip count = %d, want 2", len(clips))
	}
	if clips[0].StartSec != 0 || clips[0].EndSec != 3 {
		t.Errorf("clip[0] = [%v,%v], want [0,3]", clips[0].StartSec, clips[0].EndSec)
	}
	if clips[1].StartSec != 7 || clips[1].EndSec != 10 {
		t.Errorf("clip[1] = [%v,%v], want [7,10]", clips[1].StartSec, clips[1].EndSec)
	}
	if clips[0].Name != "pitch_01" || clips[1].Name != "pitch_02" {
		t.Errorf("clip names = %q, %q", clips[0].Name, clips[1].Name)
	}
}

func TestGenerateEDL(t *testing.T) {
	clips := []Clip{
		{Name: "pitch_01", MediaURI: "/media/pitch.mp4", StartSec: 0, EndSec: 3},
		{Name: "pitch_02", MediaURI: "/media/pitch.mp4", StartSec: 7, EndSec: 10},
	}

	edl := GenerateEDL(clips, "My Pitch", 30)
	lines := strings.Split(edl, "\n")

	if lines[0] != "TITLE: My Pitch" {
		t.Errorf("title line = %q", lines[0])
	}
	if lines[1] != "FCM: NON-DROP FRAME" {
		t.Errorf("fcm line = %q", lines[1])
	}

	// First event: source 0-3s, record 0-3s.
	if !strings.Contains(edl, "001  AX       V     C        00:00:00:00 00:00:03:00 00:00:00:00 00:00:03:00") {
		t.Errorf("first event missing or malformed:\n%s", edl)
	}
	// Second event: source 7-10s, record continues at virtual 3-6s.
	if !strings.Contains(edl, "002  AX       V     C        00:00:07:00 00:00:10:00 00:00:03:00 00:00:06:00") {
		t.Errorf("second event missing or malformed:\n%s", edl)
	}
	if !strings.Contains(edl, "* FROM CLIP NAME:  pitch_01") {
		t.Error("clip name comment missing")
	}
	if !strings.Contains(edl, "* MEDIA PATH:  /media/pitch.mp4") {
		t.Error("media path comment missing")
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	edl := GenerateEDL(nil, "T", 29.97)
	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Error("29.97fps should emit drop-frame marker")
	}
}

func TestGenerateEDL_BadFrameRate(t *testing.T) {
	clips := []Clip{{Name: "c", MediaURI: "/m.mp4", StartSec: 0, EndSec: 1}}
	edl := GenerateEDL(clips, "T", 0)
	// Falls back to 30fps: one second is 00:00:01:00.
	if !strings.Contains(edl, "00:00:01:00") {
		t.Errorf("fallback fps timecode missing:\n%s", edl)
	}
}

func TestSecToTimecode(t *testing.T) {
	tests := []struct {
		sec  float64
		fps  int
		want string
	}{
		{0, 30, "00:00:00:00"},
		{1.5, 30, "00:00:01:15"},
		{61, 25, "00:01:01:00"},
		{3661.04, 25, "01:01:01:01"},
	}

	for _, tt := range tests {
		if got := secToTimecode(tt.sec, tt.fps); got != tt.want {
			t.Errorf("secToTimecode(%v, %d) = %s, want %s", tt.sec, tt.fps, got, tt.want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"clean passthrough", "My Pitch (v2)", 70, "My Pitch (v2)"},
		{"control chars stripped", "a\x00b\nc", 70, "abc"},
		{"disallowed replaced", "a/b\\c:d", 70, "a_b_c_d"},
		{"truncated", "abcdefgh", 4, "abcd"},
		{"empty fallback", "", 70, "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.in, tt.max); got != tt.want {
				t.Errorf("SanitizeName(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
