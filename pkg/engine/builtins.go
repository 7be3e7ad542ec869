package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/holodemo/arcmesh/pkg/graph"
	"github.com/holodemo/arcmesh/pkg/ringseg"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms menu source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: alt-material -> alt_material
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSegment wraps a SegmentData so it can be returned from `segment`
// and consumed by `defsegment`. The placement angle travels beside the
// shape and ends up in a transform.
type sexpSegment struct {
	data  graph.SegmentData
	angle float64
}

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(segment %d/%d)", s.data.Shape.SegmentCount, s.data.Shape.TotalParts)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id    graph.NodeID
	name  string  // human-readable name for error messages
	angle float64 // default rotation of a segment, in degrees
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// flag reports whether a keyword is present and not explicitly false.
func (a kwArgs) flag(name string) bool {
	v, ok := a.kw[name]
	if !ok {
		return false
	}
	if b, isBool := v.(*zygo.SexpBool); isBool {
		return b.Val
	}
	return true
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a Sexp. Floats are accepted when integral.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_blue) and plain strings ("blue").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toNodeRef extracts a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toRotation accepts a number (degrees about Z) or a vec3 of Euler angles.
func toRotation(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	deg, err := toFloat64(s)
	if err != nil {
		return graph.Vec3{}, fmt.Errorf("expected degrees or vec3: %w", err)
	}
	return graph.Vec3{Z: deg}, nil
}

// ---------------------------------------------------------------------------
// Graph construction state
// ---------------------------------------------------------------------------

// builder accumulates nodes for one evaluation. Node IDs derive from
// per-evaluation counters, so the same source always yields the same IDs.
type builder struct {
	g        *graph.DesignGraph
	order    []graph.NodeID // creation order of placements and groups
	defined  []graph.NodeID // segments in definition order
	angles   map[graph.NodeID]float64
	counters map[string]int
}

func newBuilder(g *graph.DesignGraph) *builder {
	return &builder{
		g:        g,
		angles:   make(map[graph.NodeID]float64),
		counters: make(map[string]int),
	}
}

// nextPath returns prefix/n with n counting from 0 per prefix.
func (b *builder) nextPath(prefix string) string {
	n := b.counters[prefix]
	b.counters[prefix]++
	return fmt.Sprintf("%s/%d", prefix, n)
}

func (b *builder) claimName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	// Node IDs are derived from "/"-joined paths built from names.
	if strings.Contains(name, "/") {
		return fmt.Errorf("name %q must not contain /", name)
	}
	if b.g.Lookup(name) != nil {
		return fmt.Errorf("%q is already defined", name)
	}
	return nil
}

// ref returns a reference to an existing node, carrying its default angle.
func (b *builder) ref(id graph.NodeID) *sexpNodeRef {
	n := b.g.Get(id)
	ref := &sexpNodeRef{id: id, angle: b.angles[id]}
	if n != nil {
		ref.name = n.Name
	}
	return ref
}

// segmentShape returns the shape of the segment a reference points at.
func (b *builder) segmentShape(ref *sexpNodeRef) (ringseg.ShapeConfig, bool) {
	n := b.g.Get(ref.id)
	if n == nil {
		return ringseg.ShapeConfig{}, false
	}
	sd, ok := n.Data.(graph.SegmentData)
	return sd.Shape, ok
}

// transform adds a transform node placing child.
func (b *builder) transform(path string, child graph.NodeID, at, rot *graph.Vec3) graph.NodeID {
	id := graph.NewNodeID(path)
	b.g.AddNode(&graph.Node{
		ID:       id,
		Kind:     graph.NodeTransform,
		Children: []graph.NodeID{child},
		Data:     graph.TransformData{Translation: at, Rotation: rot},
	})
	b.order = append(b.order, id)
	return id
}

// placeAt wraps a bare segment reference that carries an angle in a
// transform; other references are used as is.
func (b *builder) placeAt(ref *sexpNodeRef) graph.NodeID {
	if ref.angle == 0 {
		return ref.id
	}
	n := b.g.Get(ref.id)
	if n == nil || n.Kind != graph.NodeSegment {
		return ref.id
	}
	rot := graph.Vec3{Z: ref.angle}
	return b.transform(b.nextPath("place/"+n.Name), ref.id, nil, &rot)
}

// finish registers roots: every placement or group no other node
// references. A program that only defines segments renders those.
func (b *builder) finish() {
	referenced := make(map[graph.NodeID]bool)
	for _, n := range b.g.Nodes {
		for _, c := range n.Children {
			referenced[c] = true
		}
	}
	for _, id := range b.order {
		if !referenced[id] {
			b.g.AddRoot(id)
		}
	}
	if len(b.g.Roots) > 0 {
		return
	}
	for _, id := range b.defined {
		if !referenced[id] {
			b.g.AddRoot(id)
		}
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the menu DSL builtins into a zygomys environment.
// The builtins populate the builder's DesignGraph during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	g := b.g

	// -----------------------------------------------------------------------
	// (segment :segments 4 :parts 40 :inner 0.04 :outer 0.1 :depth 0.04
	//          :angle 0 :label "Home" :material "blue" :alt-material "glow"
	//          :normalize true)
	// -----------------------------------------------------------------------
	env.AddFunction("segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		seg := &sexpSegment{data: graph.SegmentData{Shape: g.Defaults.Shape}}
		shape := &seg.data.Shape
		shape.RotationDegrees = 0

		ints := []struct {
			kw  string
			dst *int
		}{
			{"segments", &shape.SegmentCount},
			{"parts", &shape.TotalParts},
		}
		for _, f := range ints {
			if v, ok := pa.kw[f.kw]; ok {
				n, err := toInt(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("segment: %s: %w", f.kw, err)
				}
				*f.dst = n
			}
		}

		floats := []struct {
			kw  string
			dst *float32
		}{
			{"inner", &shape.InnerRadius},
			{"outer", &shape.OuterRadius},
			{"depth", &shape.Depth},
		}
		for _, f := range floats {
			if v, ok := pa.kw[f.kw]; ok {
				x, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("segment: %s: %w", f.kw, err)
				}
				*f.dst = float32(x)
			}
		}

		if v, ok := pa.kw["angle"]; ok {
			a, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("segment: angle: %w", err)
			}
			seg.angle = a
		}

		strs := []struct {
			kw  string
			dst *string
		}{
			{"label", &seg.data.Label},
			{"material", &seg.data.Material},
			{"alt-material", &seg.data.AltMaterial},
		}
		for _, f := range strs {
			if v, ok := pa.kw[f.kw]; ok {
				s, err := toKeywordString(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("segment: %s: %w", f.kw, err)
				}
				*f.dst = s
			}
		}

		if pa.flag("normalize") {
			parts, err := ringseg.NormalizeParts(shape.SegmentCount, shape.TotalParts)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("segment: normalize: %w", err)
			}
			shape.TotalParts = parts
		}

		return seg, nil
	})

	// -----------------------------------------------------------------------
	// (defsegment "name" (segment ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defsegment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defsegment requires a name and a segment expression")
		}

		segName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsegment: name: %w", err)
		}
		if err := b.claimName(segName); err != nil {
			return zygo.SexpNull, fmt.Errorf("defsegment: %w", err)
		}

		body, ok := args[1].(*sexpSegment)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defsegment: expected segment expression, got %T", args[1])
		}

		id := graph.NewNodeID("segment/" + segName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeSegment,
			Name: segName,
			Data: body.data,
		})
		if body.angle != 0 {
			b.angles[id] = body.angle
		}
		b.defined = append(b.defined, id)

		return b.ref(id), nil
	})

	// -----------------------------------------------------------------------
	// (button "name")
	// -----------------------------------------------------------------------
	env.AddFunction("button", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("button requires a name argument")
		}

		segName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("button: name: %w", err)
		}

		n := g.Lookup(segName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("button: no segment named %q", segName)
		}
		if n.Kind != graph.NodeSegment {
			return zygo.SexpNull, fmt.Errorf("button: %q is a %s, not a segment", segName, n.Kind)
		}

		return b.ref(n.ID), nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (button "home") :at (vec3 0 0.2 0) :rotate 90)
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a node reference as first argument")
		}

		ref, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		var at, rot *graph.Vec3
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			at = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			r, err := toRotation(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			rot = &r
		} else if ref.angle != 0 {
			rot = &graph.Vec3{Z: ref.angle}
		}

		prefix := "place"
		if ref.name != "" {
			prefix += "/" + ref.name
		}
		id := b.transform(b.nextPath(prefix), ref.id, at, rot)

		return b.ref(id), nil
	})

	// -----------------------------------------------------------------------
	// (radial "ring" (button "home") :count 4 :start 45 :step 90)
	//
	// Tiles copies of a segment around the ring. :count defaults to the
	// segment count, :step to the segment span and :start to its angle.
	// -----------------------------------------------------------------------
	env.AddFunction("radial", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("radial requires a name and a node reference")
		}

		groupName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("radial: name: %w", err)
		}
		if err := b.claimName(groupName); err != nil {
			return zygo.SexpNull, fmt.Errorf("radial: %w", err)
		}
		ref, err := toNodeRef(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("radial: %w", err)
		}

		count, step, start := 0, 0.0, ref.angle
		if shape, ok := b.segmentShape(ref); ok {
			count = shape.SegmentCount
			step = float64(shape.SpanDegrees())
		}
		if v, ok := pa.kw["count"]; ok {
			if count, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("radial: count: %w", err)
			}
		}
		if v, ok := pa.kw["step"]; ok {
			if step, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("radial: step: %w", err)
			}
		}
		if v, ok := pa.kw["start"]; ok {
			if start, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("radial: start: %w", err)
			}
		}
		if step == 0 {
			return zygo.SexpNull, fmt.Errorf("radial: %s is not a segment; give :step", ref.SexpString(nil))
		}
		if count < 1 {
			return zygo.SexpNull, fmt.Errorf("radial: count must be at least 1, got %d", count)
		}

		children := make([]graph.NodeID, 0, count)
		for i := 0; i < count; i++ {
			rot := graph.Vec3{Z: start + float64(i)*step}
			children = append(children, b.transform(fmt.Sprintf("radial/%s/%d", groupName, i), ref.id, nil, &rot))
		}

		id := graph.NewNodeID("radial/" + groupName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeGroup,
			Name:     groupName,
			Children: children,
			Data:     graph.GroupData{Kind: graph.GroupRadial},
		})
		b.order = append(b.order, id)

		return b.ref(id), nil
	})

	// -----------------------------------------------------------------------
	// (menu "main" (place ...) (radial ...) (button "x") ... :description "...")
	// -----------------------------------------------------------------------
	env.AddFunction("menu", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("menu requires a name argument")
		}

		menuName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("menu: name: %w", err)
		}
		if err := b.claimName(menuName); err != nil {
			return zygo.SexpNull, fmt.Errorf("menu: %w", err)
		}

		gd := graph.GroupData{Kind: graph.GroupMenu}
		if v, ok := pa.kw["description"]; ok {
			if gd.Description, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("menu: description: %w", err)
			}
		}

		var children []graph.NodeID
		for i, arg := range pa.positional[1:] {
			ref, ok := arg.(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("menu: child %d: expected node reference, got %T (%s)",
					i+1, arg, arg.SexpString(nil))
			}
			children = append(children, b.placeAt(ref))
		}

		id := graph.NewNodeID("menu/" + menuName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeGroup,
			Name:     menuName,
			Children: children,
			Data:     gd,
		})
		b.order = append(b.order, id)

		return b.ref(id), nil
	})
}
