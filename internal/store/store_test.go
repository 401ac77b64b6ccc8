package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ivlev/cinematic/internal/director"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cinematic.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	session := director.NewSession(30)
	session.Active = "Camera_0"
	session.Cameras = []director.CameraState{{
		Tag: "Camera_0",
		Fov: 55,
		Track: director.TrackState{
			Smooth: 2,
			Keyframes: []director.KeyframeState{
				{Time: 0, Fov: 55, Active: true},
				{Time: 4.5, Fov: 70, Active: true},
			},
		},
	}}

	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	// saving again updates in place
	session.TimelineLength = 45
	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := s.Load(ctx, session.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TimelineLength != 45 || got.Active != "Camera_0" {
		t.Errorf("header: %+v", got)
	}
	if len(got.Cameras) != 1 || len(got.Cameras[0].Track.Keyframes) != 2 {
		t.Fatalf("cameras: %+v", got.Cameras)
	}
	if kf := got.Cameras[0].Track.Keyframes[1]; kf.Time != 4.5 || kf.Fov != 70 {
		t.Errorf("keyframe: %+v", kf)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != session.ID || list[0].CameraCount != 1 {
		t.Errorf("list: %+v", list)
	}
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRequiresID(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(context.Background(), &director.Session{}); err == nil {
		t.Error("expected error")
	}
	if err := s.Save(context.Background(), nil); err == nil {
		t.Error("expected error for nil session")
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	session := director.NewSession(60)
	if err := s.Save(ctx, session); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}
