package graph

import (
	"encoding/json"
	"testing"

	"github.com/holodemo/arcmesh/pkg/ringseg"
)

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.Defaults.Shape != ringseg.DefaultShape() {
		t.Errorf("default shape = %+v", g.Defaults.Shape)
	}
	if g.Defaults.Units != "m" {
		t.Errorf("default units = %q, want %q", g.Defaults.Units, "m")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("segment/home")
	g.AddNode(&Node{
		ID:   id,
		Kind: NodeSegment,
		Name: "home",
		Data: SegmentData{Shape: ringseg.DefaultShape(), Label: "Home", Material: "blue"},
	})
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}
	found := g.Lookup("home")
	if found == nil || found.ID != id {
		t.Fatal("Lookup(\"home\") did not return the node")
	}
	if g.MustLookup("home") != found {
		t.Error("MustLookup returned a different node")
	}
	if g.Get(id) != found {
		t.Error("Get returned a different node")
	}
	if g.Lookup("missing") != nil {
		t.Error("Lookup of unknown name should return nil")
	}
	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("Roots = %v", g.Roots)
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic for a missing name")
		}
	}()
	New().MustLookup("nothing")
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("segment/home")
	b := NewNodeID("segment/home")
	c := NewNodeID("segment/back")
	if a != b {
		t.Error("same path should produce the same ID")
	}
	if a == c {
		t.Error("different paths should produce different IDs")
	}
	if a.IsZero() || !ZeroID.IsZero() {
		t.Error("IsZero is wrong")
	}
	if len(a.Short()) != 8 || a.String()[:8] != a.Short() {
		t.Errorf("Short() = %q, String() = %q", a.Short(), a.String())
	}
}

func TestNodeIDText(t *testing.T) {
	id := NewNodeID("menu/main")
	b, err := json.Marshal(map[string]NodeID{"id": id})
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]NodeID
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back["id"] != id {
		t.Errorf("round trip: got %s, want %s", back["id"], id)
	}
}

func TestKindsAndChildren(t *testing.T) {
	g := buildMenu(4, 40, 4)
	if got := len(g.Segments()); got != 1 {
		t.Errorf("Segments() = %d nodes, want 1", got)
	}
	if got := len(g.Groups()); got != 1 {
		t.Errorf("Groups() = %d nodes, want 1", got)
	}
	menu := g.MustLookup("main")
	if got := len(g.Children(menu)); got != 4 {
		t.Errorf("Children(menu) = %d, want 4", got)
	}

	for _, tt := range []struct {
		kind NodeKind
		want string
	}{
		{NodeSegment, "segment"},
		{NodeTransform, "transform"},
		{NodeGroup, "group"},
		{NodeKind(9), "unknown"},
	} {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
	if GroupRadial.String() != "radial" || GroupMenu.String() != "menu" {
		t.Error("GroupKind.String is wrong")
	}
}

func TestVec3(t *testing.T) {
	v := Vec3{1, 2, 3}.Add(Vec3{-1, 0.5, 1})
	if v != (Vec3{0, 2.5, 4}) {
		t.Errorf("Add = %+v", v)
	}
	if v.IsZero() || !(Vec3{}).IsZero() {
		t.Error("IsZero is wrong")
	}
}

func TestDisplayName(t *testing.T) {
	n := &Node{ID: NewNodeID("x")}
	if n.DisplayName() != n.ID.Short() {
		t.Errorf("unnamed DisplayName = %q", n.DisplayName())
	}
	n.Name = "x"
	if n.DisplayName() != "x" {
		t.Errorf("DisplayName = %q", n.DisplayName())
	}
}
