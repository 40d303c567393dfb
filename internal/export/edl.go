// Package export renders the non-destructive edit as a CMX3600 EDL so a
// desktop NLE can reproduce the cut against the original media file.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/reelcut/reelcut-agent/internal/timeline"
)

// Clip is one kept range of the source media, in absolute seconds.
type Clip struct {
	Name     string
	MediaURI string
	StartSec float64
	EndSec   float64
}

// ClipsFromTimeline converts the active segments of a timeline into EDL
// clips against a single source file. Record times follow virtual order, so
// the EDL plays exactly what the edited preview plays.
func ClipsFromTimeline(tl *timeline.Timeline, mediaURI, baseName string) []Clip {
	segs := tl.ActiveSegments()
	clips := make([]Clip, 0, len(segs))
	for i, s := range segs {
		clips = append(clips, Clip{
			Name:     fmt.Sprintf("%s_%02d", baseName, i+1),
			MediaURI: mediaURI,
			StartSec: s.Start,
			EndSec:   s.End,
		})
	}
	return clips
}

// GenerateEDL renders clips as a CMX3600 edit decision list. Source in/out
// use absolute media time; record in/out accumulate virtual time.
func GenerateEDL(clips []Clip, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", SanitizeName(title, 70))}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	var recordOffset float64
	for i, clip := range clips {
		duration := clip.EndSec - clip.StartSec
		srcIn := secToTimecode(clip.StartSec, fps)
		srcOut := secToTimecode(clip.EndSec, fps)
		recIn := secToTimecode(recordOffset, fps)
		recOut := secToTimecode(recordOffset+duration, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", clip.Name),
			fmt.Sprintf("* MEDIA PATH:  %s", clip.MediaURI),
		)

		recordOffset += duration
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func secToTimecode(sec float64, fps int) string {
	totalFrames := int(math.Round(sec * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
