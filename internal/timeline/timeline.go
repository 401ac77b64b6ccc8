package timeline

import "math"

// DefaultLength is the play-head range used when none is configured.
const DefaultLength = 60.0

// Handlers receive timeline events. Nil fields are skipped. Dispatch is
// synchronous: a handler runs to completion before the emitting call
// returns.
type Handlers struct {
	OnPlay         func(play bool)
	OnStop         func(time float64)
	OnDrag         func(time float64)
	OnKeyframe     func(time float64)
	OnKeyframeEdit func(enabled bool)
}

// Timeline is the play-head clock of a cinematic session.
type Timeline struct {
	currentTime     float64
	length          float64
	playing         bool
	keyframeEditing bool

	handlers []Handlers
}

func New(length float64) *Timeline {
	if !finite(length) || length <= 0 {
		length = DefaultLength
	}
	return &Timeline{length: length}
}

// Subscribe registers handlers; they are called in registration order.
func (t *Timeline) Subscribe(h Handlers) {
	t.handlers = append(t.handlers, h)
}

func (t *Timeline) CurrentTime() float64 { return t.currentTime }
func (t *Timeline) Length() float64      { return t.length }
func (t *Timeline) IsPlaying() bool      { return t.playing }

func (t *Timeline) IsKeyframeEditing() bool {
	return t.keyframeEditing
}

// SetLength changes the play-head range and pulls the play-head inside it.
func (t *Timeline) SetLength(length float64) bool {
	if !finite(length) || length <= 0 {
		return false
	}
	t.length = length
	if t.currentTime > length {
		t.currentTime = length
	}
	return true
}

// Play starts or pauses playback.
func (t *Timeline) Play(play bool) {
	t.playing = play
	for _, h := range t.handlers {
		if h.OnPlay != nil {
			h.OnPlay(play)
		}
	}
}

// Stop halts playback at the current time.
func (t *Timeline) Stop() {
	t.playing = false
	time := t.currentTime
	for _, h := range t.handlers {
		if h.OnStop != nil {
			h.OnStop(time)
		}
	}
}

// Drag moves the play-head as the operator scrubs. Playback state is not
// touched. NaN is ignored.
func (t *Timeline) Drag(time float64) {
	if math.IsNaN(time) {
		return
	}
	t.currentTime = t.clamp(time)
	time = t.currentTime
	for _, h := range t.handlers {
		if h.OnDrag != nil {
			h.OnDrag(time)
		}
	}
}

// Keyframe requests a keyframe capture at the current time.
func (t *Timeline) Keyframe() {
	time := t.currentTime
	for _, h := range t.handlers {
		if h.OnKeyframe != nil {
			h.OnKeyframe(time)
		}
	}
}

// SetKeyframeEditing enters or leaves per-keyframe editing. Handlers may
// force editing off again with ForceKeyframeEditing.
func (t *Timeline) SetKeyframeEditing(enabled bool) {
	t.keyframeEditing = enabled
	for _, h := range t.handlers {
		if h.OnKeyframeEdit != nil {
			h.OnKeyframeEdit(enabled)
		}
	}
}

// ForceKeyframeEditing sets the editing flag without emitting an event.
func (t *Timeline) ForceKeyframeEditing(enabled bool) {
	t.keyframeEditing = enabled
}

// Advance moves the play-head forward while playing. Reaching the end
// stops playback there.
func (t *Timeline) Advance(dt float64) {
	if !t.playing || !finite(dt) || dt <= 0 {
		return
	}
	t.currentTime += dt
	if t.currentTime >= t.length {
		t.currentTime = t.length
		t.Stop()
	}
}

// Reset rewinds to zero and stops playback and editing without emitting
// events.
func (t *Timeline) Reset() {
	t.currentTime = 0
	t.playing = false
	t.keyframeEditing = false
}

func (t *Timeline) clamp(time float64) float64 {
	if time < 0 {
		return 0
	}
	if time > t.length {
		return t.length
	}
	return time
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
