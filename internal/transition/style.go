package transition

// Style is the visual parameter set a renderer applies for a transition at
// a given progress. Neutral values mean "no visible change".
type Style struct {
	Opacity    float64 `json:"opacity"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Scale      float64 `json:"scale"`
	Rotate     float64 `json:"rotate"`
	Blur       float64 `json:"blur"`
}

// slideDistance is the normalized off-screen travel for slide transitions.
const slideDistance = 1.0

func neutralStyle() Style {
	return Style{Opacity: 1, Scale: 1}
}

// StyleFor maps an effect name and progress in [0,1] to render parameters.
// The same curve table serves both standalone effects and transitions
// attached to split points. Unknown names render neutrally.
func StyleFor(name string, progress float64) Style {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	s := neutralStyle()
	switch name {
	case "fade":
		// Fade out over the first half, back in over the second.
		if progress < 0.5 {
			s.Opacity = 1 - 2*progress
		} else {
			s.Opacity = 2*progress - 1
		}
	case "slide-left":
		s.TranslateX = -slideDistance * progress
	case "slide-right":
		s.TranslateX = slideDistance * progress
	case "slide-up":
		s.TranslateY = -slideDistance * progress
	case "slide-down":
		s.TranslateY = slideDistance * progress
	case "zoom-in":
		s.Scale = 1 + progress
	case "zoom-out":
		s.Scale = 1 - 0.5*progress
	case "spin":
		s.Rotate = 360 * progress
	case "blur":
		// Peak blur at the midpoint of the window.
		if progress < 0.5 {
			s.Blur = 2 * progress
		} else {
			s.Blur = 2 * (1 - progress)
		}
	}
	return s
}
