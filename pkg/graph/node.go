package graph

import (
	"github.com/google/uuid"
)

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodeSegment   NodeKind = iota // ring segment button
	NodeTransform                 // placement (place, radial)
	NodeGroup                     // menu or radial layout
)

func (k NodeKind) String() string {
	switch k {
	case NodeSegment:
		return "segment"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// idNamespace scopes content-derived node IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("arcmesh:node"))

// NodeID identifies a node. IDs derive from the path of the expression
// that created the node, so re-evaluating the same source yields the same IDs.
type NodeID uuid.UUID

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID derives the ID for the given creation path, e.g. "segment/home".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(idNamespace, []byte(path)))
}

// String returns the canonical UUID form.
func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first 8 hex digits, for messages.
func (id NodeID) Short() string {
	return id.String()[:8]
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// DisplayName returns the node's name, or its short ID when unnamed.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
