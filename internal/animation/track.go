package animation

import (
	"math"
	"sort"
)

// Smoothness limits for the track's interpolation tension.
const (
	MinSmooth = 1.0
	MaxSmooth = 20.0
)

// MinScaleLength is the shortest span Scale accepts.
const MinScaleLength = 0.01

// Track owns the ordered keyframes of one camera and the curve built from
// them. Every mutation rebuilds the curve before returning, so Evaluate
// never sees a stale path.
type Track struct {
	keyframes []*Keyframe
	current   *Keyframe

	beginTime float64
	smooth    float64
	allowPlay bool

	actualLength float64
	curve        *curve
}

// NewTrack returns an empty track with the lowest smoothness.
func NewTrack() *Track {
	return &Track{smooth: MinSmooth}
}

// Keyframes returns the keyframes in time order, inactive ones included.
// The slice is a copy; the keyframes are not.
func (t *Track) Keyframes() []*Keyframe {
	out := make([]*Keyframe, len(t.keyframes))
	copy(out, t.keyframes)
	return out
}

// Len counts every keyframe, inactive ones included.
func (t *Track) Len() int {
	return len(t.keyframes)
}

// Empty reports whether the track has nothing to evaluate.
func (t *Track) Empty() bool {
	return t.curve == nil
}

// Add inserts k after every keyframe with time <= k.Time, makes it the
// current keyframe and rebuilds.
func (t *Track) Add(k *Keyframe) {
	if k == nil {
		return
	}
	k.sanitize()
	i := sort.Search(len(t.keyframes), func(i int) bool {
		return t.keyframes[i].Time > k.Time
	})
	t.keyframes = append(t.keyframes, nil)
	copy(t.keyframes[i+1:], t.keyframes[i:])
	t.keyframes[i] = k
	t.current = k
	t.MakeAnimation()
}

// Remove deletes k. It returns false when k does not belong to the track.
func (t *Track) Remove(k *Keyframe) bool {
	i := t.indexOf(k)
	if i < 0 {
		return false
	}
	t.keyframes = append(t.keyframes[:i], t.keyframes[i+1:]...)
	if t.current == k {
		t.current = nil
	}
	t.MakeAnimation()
	return true
}

// MakeAnimation rebuilds the curve from the active keyframes. When several
// active keyframes share a time the one inserted last is the control point.
func (t *Track) MakeAnimation() {
	var times []float64
	var points []sample
	for _, k := range t.keyframes {
		if !k.Active {
			continue
		}
		if n := len(times); n > 0 && times[n-1] == k.Time {
			points[n-1] = k.sample()
			continue
		}
		times = append(times, k.Time)
		points = append(points, k.sample())
	}

	if len(points) == 0 {
		t.curve = nil
		t.actualLength = 0
		return
	}
	t.curve = newCurve(times, points, t.smooth)
	t.actualLength = times[len(times)-1]
}

// Evaluate maps a timeline time to the track's pose. Times outside
// [BeginTime, BeginTime+ActualLength] hold the boundary pose. ok is false
// when the track has no active keyframe or time is NaN.
func (t *Track) Evaluate(time float64) (Pose, bool) {
	if t.curve == nil || math.IsNaN(time) {
		return Pose{}, false
	}
	local := time - t.beginTime
	if local < 0 {
		local = 0
	}
	if local > t.actualLength {
		local = t.actualLength
	}
	return t.curve.at(local).pose(), true
}

// Scale stretches keyframe times so the track spans newLength seconds.
// Lengths at or below MinScaleLength, non-finite lengths and tracks with
// zero span are rejected.
func (t *Track) Scale(newLength float64) bool {
	if !finite(newLength) || newLength <= MinScaleLength || t.actualLength <= 0 {
		return false
	}
	factor := newLength / t.actualLength
	if !finite(factor) {
		return false
	}
	for _, k := range t.keyframes {
		k.Time *= factor
	}
	t.MakeAnimation()
	return true
}

// BeginTime is the timeline time at which the track starts.
func (t *Track) BeginTime() float64 {
	return t.beginTime
}

// SetBeginTime shifts the evaluation window. Negative and non-finite
// offsets are rejected.
func (t *Track) SetBeginTime(begin float64) bool {
	if begin < 0 || !finite(begin) {
		return false
	}
	t.beginTime = begin
	return true
}

// Smooth is the interpolation smoothness in [MinSmooth, MaxSmooth].
func (t *Track) Smooth() float64 {
	return t.smooth
}

// SetSmooth clamps s to [MinSmooth, MaxSmooth] and rebuilds. NaN is
// ignored.
func (t *Track) SetSmooth(s float64) {
	if math.IsNaN(s) {
		return
	}
	if s < MinSmooth {
		s = MinSmooth
	}
	if s > MaxSmooth {
		s = MaxSmooth
	}
	t.smooth = s
	t.MakeAnimation()
}

// AllowPlay reports whether the track follows the timeline during playback.
func (t *Track) AllowPlay() bool {
	return t.allowPlay
}

// SetAllowPlay turns playback following on or off.
func (t *Track) SetAllowPlay(allow bool) {
	t.allowPlay = allow
}

// ActualLength is the latest active keyframe time.
func (t *Track) ActualLength() float64 {
	return t.actualLength
}

// Current returns the keyframe the editor is focused on.
func (t *Track) Current() (*Keyframe, bool) {
	return t.current, t.current != nil
}

// Select focuses the editor on k.
func (t *Track) Select(k *Keyframe) bool {
	if t.indexOf(k) < 0 {
		return false
	}
	t.current = k
	return true
}

// Edit applies fn to k, re-validates it, restores time order and rebuilds.
func (t *Track) Edit(k *Keyframe, fn func(k *Keyframe)) bool {
	if t.indexOf(k) < 0 || fn == nil {
		return false
	}
	fn(k)
	k.sanitize()
	sort.SliceStable(t.keyframes, func(i, j int) bool {
		return t.keyframes[i].Time < t.keyframes[j].Time
	})
	t.MakeAnimation()
	return true
}

// Duplicate copies the current keyframe, retires the original and makes
// the copy current.
func (t *Track) Duplicate() (*Keyframe, bool) {
	if t.current == nil {
		return nil, false
	}
	orig := t.current
	dup := orig.Clone()
	orig.Active = false
	t.Add(dup)
	return dup, true
}

// RemoveAnimation drops every keyframe and the derived state.
func (t *Track) RemoveAnimation() {
	t.keyframes = nil
	t.current = nil
	t.allowPlay = false
	t.curve = nil
	t.actualLength = 0
}

func (t *Track) indexOf(k *Keyframe) int {
	if k == nil {
		return -1
	}
	for i, kf := range t.keyframes {
		if kf == k {
			return i
		}
	}
	return -1
}
