package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/holodemo/arcmesh/pkg/ringseg"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result has no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs all Tier 1 structural validation checks on the design graph
// and returns a slice of validation errors. An empty slice means the graph is
// valid. This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateKinds(g)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, shape, material)
// and returns a ValidationResult with separated errors and warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	// Tier 1: structural.
	tier1 := Validate(g)

	// Tier 2: segment shapes and layout.
	tier2Errs, tier2Warnings := validateShapes(g)
	tier2Warnings = append(tier2Warnings, validateLayout(g)...)

	// Tier 3: materials.
	tier3Warnings := validateMaterials(g)

	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)
	result.Warnings = append(result.Warnings, tier3Warnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every child ID points to a node that
// exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", node.DisplayName()),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateKinds checks that each node's Data matches its Kind and that
// segments are leaves.
func validateKinds(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		var ok bool
		switch node.Kind {
		case NodeSegment:
			_, ok = node.Data.(SegmentData)
			if len(node.Children) > 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("segment %q has %d children", node.DisplayName(), len(node.Children)),
					Severity: SeverityError,
				})
			}
		case NodeTransform:
			_, ok = node.Data.(TransformData)
		case NodeGroup:
			_, ok = node.Data.(GroupData)
		}
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s node carries %T data", node.Kind, node.Data),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateShapes reports segments whose shape cannot be built. When only
// the part count is at fault the message suggests a valid one.
func validateShapes(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, node := range g.Segments() {
		sd, ok := node.Data.(SegmentData)
		if !ok {
			continue
		}
		err := sd.Shape.Validate()
		if err == nil {
			if sd.Shape.RotationDegrees != 0 {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: fmt.Sprintf("segment %q carries a rotation of %g degrees; place it instead", node.DisplayName(), sd.Shape.RotationDegrees),
				})
			}
			continue
		}

		msg := fmt.Sprintf("segment %q: %v", node.DisplayName(), err)
		var ce *ringseg.ConfigError
		if errors.As(err, &ce) && ce.Field == "parts" {
			if n, nerr := ringseg.NormalizeParts(sd.Shape.SegmentCount, sd.Shape.TotalParts); nerr == nil {
				msg += fmt.Sprintf(" (try :parts %d)", n)
			}
		}
		errs = append(errs, ValidationError{
			NodeID:   node.ID,
			Message:  msg,
			Severity: SeverityError,
		})
	}

	return errs, warnings
}

// placedArc is a segment as seen from its enclosing group: the angular
// interval it covers and the annulus it occupies.
type placedArc struct {
	node        *Node
	start, span float64 // degrees
	inner       float64
	outer       float64
	offset      Vec3
}

// validateLayout warns about radial groups that leave a gap and about
// sibling placements whose arcs overlap.
func validateLayout(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, grp := range g.Groups() {
		gd, ok := grp.Data.(GroupData)
		if !ok {
			continue
		}
		arcs := groupArcs(g, grp)

		if gd.Kind == GroupRadial && len(arcs) > 0 {
			covered := 0.0
			for _, a := range arcs {
				covered += a.span
			}
			if covered < 360-angleEpsilon {
				warnings = append(warnings, ValidationWarning{
					NodeID:  grp.ID,
					Message: fmt.Sprintf("radial %q covers %g of 360 degrees", grp.DisplayName(), covered),
				})
			}
		}

		for i := 0; i < len(arcs); i++ {
			for j := i + 1; j < len(arcs); j++ {
				if arcsOverlap(arcs[i], arcs[j]) {
					warnings = append(warnings, ValidationWarning{
						NodeID: grp.ID,
						Message: fmt.Sprintf("segments %q at %g and %q at %g degrees overlap",
							arcs[i].node.DisplayName(), arcs[i].start, arcs[j].node.DisplayName(), arcs[j].start),
					})
				}
			}
		}
	}

	return warnings
}

const angleEpsilon = 1e-6

// groupArcs collects the segments directly placed by a group's children:
// either a bare segment, or a transform wrapping one.
func groupArcs(g *DesignGraph, grp *Node) []placedArc {
	var arcs []placedArc
	for _, child := range g.Children(grp) {
		var rot, off Vec3
		target := child
		if td, ok := child.Data.(TransformData); ok {
			if td.Rotation != nil {
				rot = *td.Rotation
			}
			if td.Translation != nil {
				off = *td.Translation
			}
			kids := g.Children(child)
			if len(kids) != 1 {
				continue
			}
			target = kids[0]
		}
		sd, ok := target.Data.(SegmentData)
		if !ok || sd.Shape.Validate() != nil {
			continue
		}
		// Arcs tilted out of the ring plane are not compared.
		if rot.X != 0 || rot.Y != 0 {
			continue
		}
		arcs = append(arcs, placedArc{
			node:   target,
			start:  normDegrees(rot.Z + float64(sd.Shape.RotationDegrees)),
			span:   float64(sd.Shape.SpanDegrees()),
			inner:  float64(sd.Shape.InnerRadius),
			outer:  float64(sd.Shape.OuterRadius),
			offset: off,
		})
	}
	return arcs
}

func normDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func arcsOverlap(a, b placedArc) bool {
	if a.offset != b.offset {
		return false
	}
	if a.outer <= b.inner || b.outer <= a.inner {
		return false
	}
	return normDegrees(b.start-a.start) < a.span-angleEpsilon ||
		normDegrees(a.start-b.start) < b.span-angleEpsilon
}

// validateMaterials warns about material settings that have no visible
// effect.
func validateMaterials(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Segments() {
		sd, ok := node.Data.(SegmentData)
		if !ok {
			continue
		}
		switch {
		case sd.AltMaterial != "" && sd.Material == "":
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("segment %q has an alternate material but no material", node.DisplayName()),
			})
		case sd.AltMaterial != "" && sd.AltMaterial == sd.Material:
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("segment %q alternate material equals its material; focus has no effect", node.DisplayName()),
			})
		}
	}
	return warnings
}
