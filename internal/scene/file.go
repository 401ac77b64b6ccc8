package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Node is one scene node as stored in a scene file.
type Node struct {
	Handle   Handle     `yaml:"handle"`
	Position mgl64.Vec3 `yaml:"position,flow"`
	Angles   Angles     `yaml:"angles,flow"`
}

type sceneFile struct {
	Nodes []Node `yaml:"nodes"`
}

// ReadGraph loads the nodes of a scene file into a new Graph.
func ReadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}

	g := NewGraph()
	for i, n := range f.Nodes {
		if n.Handle == "" {
			return nil, fmt.Errorf("parse scene %s: node %d has no handle", path, i)
		}
		g.Set(n.Handle, Transform{Position: n.Position, Rotation: n.Angles.Quat()})
	}
	return g, nil
}

// WriteGraph stores g sorted by handle.
func WriteGraph(g *Graph, path string) error {
	handles := g.Handles()
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	var f sceneFile
	for _, h := range handles {
		t, _ := g.Lookup(h)
		f.Nodes = append(f.Nodes, Node{Handle: h, Position: t.Position, Angles: AnglesFromQuat(t.Rotation)})
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create scene dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
