package gfx

import "fmt"

// Attribute declares one vertex attribute: the name the shader reads, the
// slot it is bound to and its wire encoding.
type Attribute struct {
	Name       string
	Index      uint32
	Components int32
	Scalar     ScalarType
	Normalized bool
}

// Size returns the encoded byte size of one attribute value.
func (a Attribute) Size() int { return int(a.Components) * a.Scalar.Size() }

// Semantics is the closed table of vertex attributes shared by geometry and
// programs. Indices and names are unique and never change once built.
type Semantics struct {
	attrs  []Attribute
	byName map[string]int
	stride int32
}

// NewSemantics validates and freezes an attribute table. Attribute order is
// the interleaved layout order.
func NewSemantics(attrs ...Attribute) (*Semantics, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("gfx: semantics need at least one attribute")
	}
	s := &Semantics{
		attrs:  make([]Attribute, len(attrs)),
		byName: make(map[string]int, len(attrs)),
	}
	indices := make(map[uint32]string, len(attrs))
	for i, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("gfx: attribute %d has no name", i)
		}
		if a.Components < 1 || a.Components > 4 {
			return nil, fmt.Errorf("gfx: attribute %q: %d components", a.Name, a.Components)
		}
		if _, dup := s.byName[a.Name]; dup {
			return nil, fmt.Errorf("gfx: duplicate attribute name %q", a.Name)
		}
		if other, dup := indices[a.Index]; dup {
			return nil, fmt.Errorf("gfx: attributes %q and %q share index %d", other, a.Name, a.Index)
		}
		indices[a.Index] = a.Name
		s.byName[a.Name] = i
		s.attrs[i] = a
		s.stride += int32(a.Size())
	}
	return s, nil
}

// MustSemantics is NewSemantics for package-level tables.
func MustSemantics(attrs ...Attribute) *Semantics {
	s, err := NewSemantics(attrs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Attributes returns a copy of the table in layout order.
func (s *Semantics) Attributes() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Lookup finds an attribute by name.
func (s *Semantics) Lookup(name string) (Attribute, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// Stride is the byte size of one interleaved vertex.
func (s *Semantics) Stride() int32 { return s.stride }

// Vertex is a fixed-size record. VertexAttributes names the attributes in
// the order AppendVertex encodes them; it must not depend on the receiver.
type Vertex interface {
	VertexAttributes() []string
	AppendVertex(dst []byte) []byte
}

// AttributeValue is one value of a single attribute, used to build
// deinterleaved geometry.
type AttributeValue interface {
	Semantic() string
	AppendAttribute(dst []byte) []byte
}

// VertexData is encoded interleaved vertex data.
type VertexData struct {
	layout []string
	count  int
	data   []byte
}

// Interleave encodes a vertex slice. The layout comes from the element type.
func Interleave[V Vertex](verts []V) VertexData {
	var zero V
	var data []byte
	for _, v := range verts {
		data = v.AppendVertex(data)
	}
	return VertexData{layout: zero.VertexAttributes(), count: len(verts), data: data}
}

// Len returns the number of vertices.
func (d VertexData) Len() int { return d.count }

// AttributeArray is one encoded deinterleaved attribute column.
type AttributeArray struct {
	name  string
	count int
	data  []byte
}

// Attributes encodes a column of attribute values. The semantic name comes
// from the element type.
func Attributes[A AttributeValue](values []A) AttributeArray {
	var zero A
	arr := AttributeArray{name: zero.Semantic(), count: len(values)}
	for _, v := range values {
		arr.data = v.AppendAttribute(arr.data)
	}
	return arr
}

// Name returns the semantic name of the column.
func (a AttributeArray) Name() string { return a.name }

// Len returns the number of values.
func (a AttributeArray) Len() int { return a.count }

// IndexArray is an encoded index buffer.
type IndexArray struct {
	typ    IndexType
	values []uint32
	data   []byte
}

// Indices encodes indices in their native width.
func Indices[I uint8 | uint16 | uint32](idx []I) IndexArray {
	var zero I
	arr := IndexArray{values: make([]uint32, len(idx))}
	switch any(zero).(type) {
	case uint8:
		arr.typ = IndexUint8
	case uint16:
		arr.typ = IndexUint16
	default:
		arr.typ = IndexUint32
	}
	arr.data = make([]byte, 0, len(idx)*arr.typ.Size())
	for i, v := range idx {
		u := uint32(v)
		arr.values[i] = u
		switch arr.typ {
		case IndexUint8:
			arr.data = append(arr.data, byte(u))
		case IndexUint16:
			arr.data = append(arr.data, byte(u), byte(u>>8))
		default:
			arr.data = append(arr.data, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
		}
	}
	return arr
}

// Len returns the number of indices.
func (a IndexArray) Len() int { return len(a.values) }

// Type returns the index element type.
func (a IndexArray) Type() IndexType { return a.typ }
