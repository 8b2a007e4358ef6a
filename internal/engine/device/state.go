package device

// RenderState is a toggleable pipeline state.
type RenderState int

const (
	StateBlend RenderState = iota
	StateDepthTest
	StateDepthWrite
	StateCullFace
)

// BlendFunc is a blend factor.
type BlendFunc int

const (
	BlendZero BlendFunc = iota
	BlendOne
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDstAlpha
	BlendInvDstAlpha
)

// Comparison is a depth comparison function.
type Comparison int

const (
	CompareLess Comparison = iota
	CompareLessEqual
	CompareEqual
	CompareGreater
	CompareGreaterEqual
	CompareNotEqual
	CompareAlways
	CompareNever
)

// CullMode selects the culled triangle side.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
)

// Topology is a draw-call primitive topology.
type Topology int

const (
	TriangleList Topology = iota
	TriangleStrip
	LineList
	PointList
)

// ClearMask selects buffers for Clear.
type ClearMask int

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// MatrixType names the engine matrices a shader may consume.
type MatrixType int

const (
	// MatrixWorld is the object-to-world transform ("WorldMatrix").
	MatrixWorld MatrixType = iota
	// MatrixViewProj is the combined view-projection transform
	// ("ViewProjMatrix").
	MatrixViewProj
)
