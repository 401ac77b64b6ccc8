package scene

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-6

func near(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() < eps
}

func TestAnglesRoundTrip(t *testing.T) {
	tests := []Angles{
		{},
		{X: 10, Y: 20, Z: 30},
		{X: -45, Y: 170, Z: 5},
		{X: 0, Y: -90, Z: 0},
	}
	for _, a := range tests {
		got := AnglesFromQuat(a.Quat())
		if math.Abs(got.X-a.X) > eps || math.Abs(got.Y-a.Y) > eps || math.Abs(got.Z-a.Z) > eps {
			t.Errorf("AnglesFromQuat(%v.Quat()) = %v", a, got)
		}
	}
}

func TestAnglesAxes(t *testing.T) {
	tests := []struct {
		name string
		a    Angles
		want mgl64.Vec3
	}{
		{"identity", Angles{}, mgl64.Vec3{0, 0, 1}},
		{"yaw right", Angles{Y: 90}, mgl64.Vec3{1, 0, 0}},
		{"pitch down", Angles{X: 90}, mgl64.Vec3{0, -1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Quat().Rotate(Forward); !near(got, tt.want) {
				t.Errorf("forward = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		a, ref Angles
		want   Angles
	}{
		{Angles{X: 350}, Angles{}, Angles{X: -10}},
		{Angles{Y: -190}, Angles{Y: 170}, Angles{Y: 170}},
		{Angles{Z: 725}, Angles{Z: 0}, Angles{Z: 5}},
		{Angles{X: 90}, Angles{X: 80}, Angles{X: 90}},
		{Angles{Y: -1e6}, Angles{Y: 0}, Angles{Y: 80}},
		{Angles{X: math.Inf(1)}, Angles{}, Angles{X: math.Inf(1)}},
	}
	for _, tt := range tests {
		if got := tt.a.Unwrap(tt.ref); got != tt.want {
			t.Errorf("%v.Unwrap(%v) = %v, want %v", tt.a, tt.ref, got, tt.want)
		}
	}
}

func TestLookRotation(t *testing.T) {
	tests := []struct {
		eye, center mgl64.Vec3
	}{
		{mgl64.Vec3{}, mgl64.Vec3{10, 0, 0}},
		{mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, -3, 8}},
		{mgl64.Vec3{0, 5, 0}, mgl64.Vec3{-4, 0, -4}},
	}
	for _, tt := range tests {
		q, ok := LookRotation(tt.eye, tt.center)
		if !ok {
			t.Fatalf("LookRotation(%v, %v) failed", tt.eye, tt.center)
		}
		want := tt.center.Sub(tt.eye).Normalize()
		if got := q.Rotate(Forward); !near(got, want) {
			t.Errorf("LookRotation(%v, %v) forward = %v, want %v", tt.eye, tt.center, got, want)
		}
	}

	if _, ok := LookRotation(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}); ok {
		t.Error("coincident points should not resolve")
	}
}

func TestTransformLocalWorld(t *testing.T) {
	tr := Transform{Position: mgl64.Vec3{1, 2, 3}, Rotation: Angles{Y: 90}.Quat()}

	world := tr.ToWorld(mgl64.Vec3{0, 0, 1})
	if !near(world, mgl64.Vec3{2, 2, 3}) {
		t.Errorf("ToWorld = %v", world)
	}
	if local := tr.ToLocal(world); !near(local, mgl64.Vec3{0, 0, 1}) {
		t.Errorf("ToLocal = %v", local)
	}
}

func TestGraph(t *testing.T) {
	g := NewGraph()
	if _, ok := g.Lookup(""); ok {
		t.Error("empty handle should not resolve")
	}

	g.Set("target", Transform{Position: mgl64.Vec3{0, 0, 20}, Rotation: mgl64.QuatIdent()})
	if tr, ok := g.Lookup("target"); !ok || tr.Position != (mgl64.Vec3{0, 0, 20}) {
		t.Errorf("Lookup(target) = %v, %v", tr, ok)
	}
	if len(g.Handles()) != 1 {
		t.Errorf("Handles() = %v", g.Handles())
	}

	g.Remove("target")
	if _, ok := g.Lookup("target"); ok {
		t.Error("removed node still resolves")
	}
}

func TestGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scene.yaml")

	g := NewGraph()
	g.Set("target", Transform{Position: mgl64.Vec3{0, 0, 20}, Rotation: Angles{Y: 45}.Quat()})
	g.Set("dolly", Transform{Position: mgl64.Vec3{-3.5, 1, 2}, Rotation: mgl64.QuatIdent()})
	if err := WriteGraph(g, path); err != nil {
		t.Fatalf("WriteGraph failed: %v", err)
	}

	got, err := ReadGraph(path)
	if err != nil {
		t.Fatalf("ReadGraph failed: %v", err)
	}
	for _, h := range []Handle{"target", "dolly"} {
		want, _ := g.Lookup(h)
		tr, ok := got.Lookup(h)
		if !ok {
			t.Fatalf("node %s missing", h)
		}
		if tr.Position != want.Position {
			t.Errorf("%s position = %v, want %v", h, tr.Position, want.Position)
		}
		if !near(tr.Rotation.Rotate(Forward), want.Rotation.Rotate(Forward)) {
			t.Errorf("%s rotation differs", h)
		}
	}
}

func TestReadGraphErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadGraph(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(dir, "bad.yaml")
	os.WriteFile(path, []byte("nodes:\n  - position: [1, 2, 3]\n"), 0644)
	if _, err := ReadGraph(path); err == nil {
		t.Error("expected error for node without handle")
	}
}
