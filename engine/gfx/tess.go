package gfx

// Mode selects primitive assembly.
type Mode uint8

const (
	ModeTriangle Mode = iota // independent triangles, 3 vertices each
	ModeTriangleStrip
	ModeTriangleFan
	ModeLine
	ModeLineStrip
	ModePoint
)

func (m Mode) String() string {
	switch m {
	case ModeTriangle:
		return "triangles"
	case ModeTriangleStrip:
		return "triangle-strip"
	case ModeTriangleFan:
		return "triangle-fan"
	case ModeLine:
		return "lines"
	case ModeLineStrip:
		return "line-strip"
	case ModePoint:
		return "points"
	default:
		return "unknown"
	}
}

// Primitives returns how many primitives n vertices assemble into.
func (m Mode) Primitives(n int) int {
	switch m {
	case ModeTriangle:
		return n / 3
	case ModeTriangleStrip, ModeTriangleFan:
		return max(n-2, 0)
	case ModeLine:
		return n / 2
	case ModeLineStrip:
		return max(n-1, 0)
	default:
		return n
	}
}

// Layout tells how a tess stores its vertex data.
type Layout uint8

const (
	Interleaved Layout = iota + 1
	Deinterleaved
)

func (l Layout) String() string {
	switch l {
	case Interleaved:
		return "interleaved"
	case Deinterleaved:
		return "deinterleaved"
	default:
		return "none"
	}
}

// TessBuilder accumulates geometry before a single validating Build.
type TessBuilder struct {
	ctx  *Context
	sem  *Semantics
	mode Mode

	vertices   *VertexData
	attributes []AttributeArray
	indices    *IndexArray
}

// NewTessBuilder starts a tess for the given semantics. Mode defaults to
// independent triangles.
func NewTessBuilder(ctx *Context, sem *Semantics) *TessBuilder {
	return &TessBuilder{ctx: ctx, sem: sem, mode: ModeTriangle}
}

func (b *TessBuilder) SetMode(m Mode) *TessBuilder {
	b.mode = m
	return b
}

// SetVertices selects the interleaved layout.
func (b *TessBuilder) SetVertices(v VertexData) *TessBuilder {
	b.vertices = &v
	return b
}

// SetAttributes adds one deinterleaved column; call once per semantic.
func (b *TessBuilder) SetAttributes(a AttributeArray) *TessBuilder {
	b.attributes = append(b.attributes, a)
	return b
}

func (b *TessBuilder) SetIndices(i IndexArray) *TessBuilder {
	b.indices = &i
	return b
}

// Build validates everything and uploads the geometry. On error nothing is
// allocated on the device.
func (b *TessBuilder) Build() (*Tess, error) {
	var (
		layout   Layout
		vertices int
		columns  []AttributeArray
		err      error
	)
	switch {
	case b.vertices != nil && len(b.attributes) > 0:
		return nil, &TessError{Kind: MixedLayout}
	case b.vertices != nil:
		layout = Interleaved
		vertices, err = b.checkInterleaved()
	case len(b.attributes) > 0:
		layout = Deinterleaved
		columns, vertices, err = b.checkDeinterleaved()
	default:
		return nil, &TessError{Kind: NoLayout}
	}
	if err != nil {
		return nil, err
	}

	t := &Tess{
		ctx:      b.ctx,
		sem:      b.sem,
		mode:     b.mode,
		layout:   layout,
		vertices: vertices,
	}
	if b.indices != nil {
		t.indexed = true
		t.indexType = b.indices.typ
		t.indices = b.indices.Len()
	}
	b.ctx.drainStale("tess upload")
	t.upload(b.vertices, columns, b.indices)
	if err := b.ctx.dev.Err(); err != nil {
		t.Destroy()
		return nil, &DeviceError{Op: "tess upload", Err: err}
	}
	return t, nil
}

func (b *TessBuilder) checkInterleaved() (int, error) {
	v := b.vertices
	if err := b.checkLayout(v.layout); err != nil {
		return 0, err
	}
	if len(v.data) != v.count*int(b.sem.Stride()) {
		return 0, &TessError{Kind: AttributeSizeMismatch, Attribute: "vertex", Len: len(v.data)}
	}
	if b.indices != nil {
		if err := checkIndices(*b.indices, "vertex", v.count); err != nil {
			return 0, err
		}
	}
	return v.count, nil
}

// checkLayout requires the vertex to encode exactly the semantics, in
// semantics order.
func (b *TessBuilder) checkLayout(layout []string) error {
	for i, a := range b.sem.attrs {
		if i >= len(layout) {
			return &TessError{Kind: LayoutMismatch, Attribute: a.Name, Position: i}
		}
		if layout[i] != a.Name {
			return &TessError{Kind: LayoutMismatch, Attribute: layout[i], Position: i}
		}
	}
	if len(layout) > len(b.sem.attrs) {
		n := len(b.sem.attrs)
		return &TessError{Kind: LayoutMismatch, Attribute: layout[n], Position: n}
	}
	return nil
}

// checkDeinterleaved returns the columns in semantics order and the vertex
// count (shortest column).
func (b *TessBuilder) checkDeinterleaved() ([]AttributeArray, int, error) {
	byName := make(map[string]AttributeArray, len(b.attributes))
	for _, a := range b.attributes {
		attr, ok := b.sem.Lookup(a.name)
		if !ok {
			return nil, 0, &TessError{Kind: UnknownAttribute, Attribute: a.name}
		}
		if _, dup := byName[a.name]; dup {
			return nil, 0, &TessError{Kind: DuplicateAttribute, Attribute: a.name}
		}
		if len(a.data) != a.count*attr.Size() {
			return nil, 0, &TessError{Kind: AttributeSizeMismatch, Attribute: a.name, Len: len(a.data)}
		}
		byName[a.name] = a
	}

	columns := make([]AttributeArray, 0, len(byName))
	shortest := -1
	for _, attr := range b.sem.attrs {
		a, ok := byName[attr.Name]
		if !ok {
			return nil, 0, &TessError{Kind: MissingAttribute, Attribute: attr.Name}
		}
		if b.indices == nil && shortest >= 0 && a.count != shortest {
			return nil, 0, &TessError{Kind: LengthMismatch, Attribute: a.name, Len: a.count}
		}
		if shortest < 0 || a.count < shortest {
			shortest = a.count
		}
		columns = append(columns, a)
	}

	if b.indices != nil {
		for _, a := range columns {
			if err := checkIndices(*b.indices, a.name, a.count); err != nil {
				return nil, 0, err
			}
		}
	}
	return columns, shortest, nil
}

func checkIndices(idx IndexArray, name string, n int) error {
	for i, v := range idx.values {
		if int(v) >= n {
			return &TessError{Kind: IndexOutOfBounds, Attribute: name, Position: i, Value: v, Len: n}
		}
	}
	return nil
}

func (t *Tess) upload(vertices *VertexData, columns []AttributeArray, indices *IndexArray) {
	dev := t.ctx.dev
	t.vao = dev.CreateVertexArray()
	dev.BindVertexArray(t.vao)

	switch t.layout {
	case Interleaved:
		vbo := dev.CreateBuffer(VertexBuffer, vertices.data)
		t.buffers = append(t.buffers, vbo)
		stride := t.sem.Stride()
		offset := 0
		for _, a := range t.sem.attrs {
			dev.VertexAttribPointer(a.Index, a.Components, a.Scalar, a.Normalized, stride, offset)
			offset += a.Size()
		}
	case Deinterleaved:
		for i, a := range t.sem.attrs {
			vbo := dev.CreateBuffer(VertexBuffer, columns[i].data)
			t.buffers = append(t.buffers, vbo)
			dev.VertexAttribPointer(a.Index, a.Components, a.Scalar, a.Normalized, int32(a.Size()), 0)
		}
	}
	if indices != nil {
		// The element buffer binding is recorded in the VAO.
		t.buffers = append(t.buffers, dev.CreateBuffer(IndexBuffer, indices.data))
	}

	dev.BindVertexArray(0)
}

// Tess is GPU-resident geometry. It never changes after Build; re-tessellating
// means building a new one and destroying the old.
type Tess struct {
	ctx    *Context
	sem    *Semantics
	mode   Mode
	layout Layout

	vao     uint32
	buffers []uint32

	vertices  int
	indexed   bool
	indices   int
	indexType IndexType

	destroyed bool
}

func (t *Tess) Mode() Mode { return t.mode }

func (t *Tess) Layout() Layout { return t.layout }

func (t *Tess) Semantics() *Semantics { return t.sem }

func (t *Tess) VertexCount() int { return t.vertices }

func (t *Tess) Indexed() bool { return t.indexed }

func (t *Tess) IndexCount() int { return t.indices }

// DrawCount is the number of vertices a full draw submits.
func (t *Tess) DrawCount() int {
	if t.indexed {
		return t.indices
	}
	return t.vertices
}

// PrimitiveCount is the number of primitives a full draw produces.
func (t *Tess) PrimitiveCount() int { return t.mode.Primitives(t.DrawCount()) }

// View covers the whole tess.
func (t *Tess) View() TessView { return TessView{tess: t, start: 0, count: t.DrawCount()} }

// Slice covers vertices (or indices) in [start, end).
func (t *Tess) Slice(start, end int) (TessView, error) {
	n := t.DrawCount()
	if start < 0 || end < start || end > n {
		return TessView{}, &TessError{Kind: IndexOutOfBounds, Attribute: "view", Position: start, Value: uint32(max(end, 0)), Len: n}
	}
	return TessView{tess: t, start: start, count: end - start}, nil
}

// Destroy releases the GPU objects. Safe to call twice.
func (t *Tess) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	dev := t.ctx.dev
	for _, b := range t.buffers {
		dev.DeleteBuffer(b)
	}
	dev.DeleteVertexArray(t.vao)
	t.buffers = nil
}

// TessView is a draw range over a tess.
type TessView struct {
	tess         *Tess
	start, count int
}

func (v TessView) Tess() *Tess { return v.tess }

func (v TessView) Len() int { return v.count }

func (v TessView) draw(dev Device) {
	t := v.tess
	if v.count == 0 {
		return
	}
	dev.BindVertexArray(t.vao)
	if t.indexed {
		dev.DrawElements(t.mode, int32(v.count), t.indexType, v.start*t.indexType.Size())
	} else {
		dev.DrawArrays(t.mode, int32(v.start), int32(v.count))
	}
	dev.BindVertexArray(0)
}
