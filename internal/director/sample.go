package director

// OpacityAt returns the opacity of element at time t by interpolating
// linearly between its keyframes. Before the first keyframe the element is
// at that keyframe's opacity, after the last at the last one's. An element
// without keyframes is fully visible.
func OpacityAt(keyframes []Keyframe, element string, t float64) float64 {
	var prev, next *Keyframe
	for i := range keyframes {
		kf := &keyframes[i]
		if kf.Element != element {
			continue
		}
		if kf.Time <= t {
			prev = kf
			continue
		}
		next = kf
		break
	}

	switch {
	case prev == nil && next == nil:
		return 1
	case prev == nil:
		return next.Opacity
	case next == nil:
		return prev.Opacity
	}

	span := next.Time - prev.Time
	if span <= 0 {
		return next.Opacity
	}
	return lerp(prev.Opacity, next.Opacity, (t-prev.Time)/span)
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ElementOpacity is the opacity of one timeline element at some instant.
type ElementOpacity struct {
	Element string
	Opacity float64
}

// Opacities samples every element of the segment at t, in the order the
// elements first appear in the keyframes.
func (s Segment) Opacities(t float64) []ElementOpacity {
	var out []ElementOpacity
	seen := make(map[string]bool)
	for _, kf := range s.Keyframes {
		if seen[kf.Element] {
			continue
		}
		seen[kf.Element] = true
		out = append(out, ElementOpacity{Element: kf.Element, Opacity: OpacityAt(s.Keyframes, kf.Element, t)})
	}
	return out
}
