package device

// Attribute locations shared by every shader in the engine. Streams bound
// together (per-vertex + per-instance) must not overlap.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribTexCoord = 2
	AttribColor    = 3
	// AttribData0..AttribData3 carry renderer-specific payloads: packed
	// billboard size+rotation, per-instance billboard records, or the four
	// columns of an instance world matrix.
	AttribData0 = 4
	AttribData1 = 5
	AttribData2 = 6
	AttribData3 = 7
)

// AttribType is the component type of a vertex attribute.
type AttribType int

const (
	AttribFloat AttribType = iota
	AttribUnsignedByte
)

// InputRate tells whether a stream advances per vertex or per instance.
type InputRate int

const (
	RatePerVertex InputRate = iota
	RatePerInstance
)

// VertexAttribute describes one attribute inside a vertex declaration.
type VertexAttribute struct {
	// Location is the shader attribute index (Attrib* constants).
	Location uint32
	// Components is the number of components (1-4).
	Components int
	// Type is the component type.
	Type AttribType
	// Offset is the attribute's byte offset inside one vertex.
	Offset int
	// Normalized maps integer types to [0,1] in the shader.
	Normalized bool
}

// VertexDeclaration describes the memory layout of one vertex stream.
// Declarations are built once and shared; they are immutable after creation.
type VertexDeclaration struct {
	// Stride is the byte size of one vertex (or one instance record).
	Stride int
	// Rate tells whether the stream advances per vertex or per instance.
	Rate InputRate
	// Attributes is the attribute list, in no particular order.
	Attributes []VertexAttribute
}

// NewDeclaration builds a vertex declaration.
func NewDeclaration(stride int, rate InputRate, attrs ...VertexAttribute) *VertexDeclaration {
	return &VertexDeclaration{
		Stride:     stride,
		Rate:       rate,
		Attributes: attrs,
	}
}
