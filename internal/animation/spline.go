package animation

import (
	"sort"

	"github.com/ivlev/cinematic/internal/scene"
)

// channels: position xyz, pitch/yaw/roll, heading xyz, fov.
const (
	channels    = 10
	firstAngle  = 3
	angleLength = 6
)

type sample [channels]float64

// curve is a cubic Hermite spline over non-uniformly spaced knots.
// Tangents follow the cardinal spline rule scaled by the track's
// smoothness, so the path passes exactly through every knot and is C1
// between them. knots keeps the stored values returned at knot times;
// points holds the same knots with angles unwrapped for blending.
type curve struct {
	times    []float64
	knots    []sample
	points   []sample
	tangents []sample
}

// tangentScale maps smoothness [MinSmooth, MaxSmooth] to the cardinal
// tangent weight: 0 eases in and out of every knot, values close to 1
// approach Catmull-Rom.
func tangentScale(smooth float64) float64 {
	return 1 - 1/smooth
}

// newCurve expects strictly increasing times.
func newCurve(times []float64, knots []sample, smooth float64) *curve {
	points := make([]sample, len(knots))
	copy(points, knots)
	unwrapAngles(points)
	c := &curve{
		times:    times,
		knots:    knots,
		points:   points,
		tangents: make([]sample, len(points)),
	}
	n := len(points)
	if n < 2 {
		return c
	}

	scale := tangentScale(smooth)
	for i := 0; i < n; i++ {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		dt := times[hi] - times[lo]
		for ch := 0; ch < channels; ch++ {
			c.tangents[i][ch] = scale * (points[hi][ch] - points[lo][ch]) / dt
		}
	}
	return c
}

// unwrapAngles shifts each knot's angle channels by whole turns towards
// the previous knot, so a turn through 180 degrees takes the short way.
func unwrapAngles(points []sample) {
	for i := 1; i < len(points); i++ {
		for ch := firstAngle; ch < firstAngle+angleLength; ch += 3 {
			prev := scene.Angles{X: points[i-1][ch], Y: points[i-1][ch+1], Z: points[i-1][ch+2]}
			cur := scene.Angles{X: points[i][ch], Y: points[i][ch+1], Z: points[i][ch+2]}
			cur = cur.Unwrap(prev)
			points[i][ch], points[i][ch+1], points[i][ch+2] = cur.X, cur.Y, cur.Z
		}
	}
}

func (c *curve) at(t float64) sample {
	n := len(c.points)
	if n == 1 || !(t > c.times[0]) {
		return c.knots[0]
	}
	if t >= c.times[n-1] {
		return c.knots[n-1]
	}

	// first knot strictly after t
	j := sort.Search(n, func(k int) bool { return c.times[k] > t })
	if j >= n {
		return c.knots[n-1]
	}
	i := j - 1
	if t == c.times[i] {
		return c.knots[i]
	}

	dt := c.times[j] - c.times[i]
	u := (t - c.times[i]) / dt
	u2 := u * u
	u3 := u2 * u

	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2

	var out sample
	p0, p1 := c.points[i], c.points[j]
	m0, m1 := c.tangents[i], c.tangents[j]
	// shift the segment by whole turns so it leaves knot i at its stored angle
	k0 := c.knots[i]
	for ch := 0; ch < channels; ch++ {
		out[ch] = h00*p0[ch] + h10*dt*m0[ch] + h01*p1[ch] + h11*dt*m1[ch] + k0[ch] - p0[ch]
	}
	return out
}
