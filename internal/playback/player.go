package playback

// Player is the external media player the synchronizer steers. CurrentTime
// is in absolute seconds over the physical media; the synchronizer writes
// it to enforce clamping, looping and relocation.
type Player interface {
	CurrentTime() float64
	SetCurrentTime(float64)
	Duration() float64
	Playing() bool
}
