package device

import "unsafe"

// Usage hints how often a buffer's contents change.
type Usage int

const (
	// UsageStatic marks buffers filled once and drawn many times.
	UsageStatic Usage = iota
	// UsageDynamic marks buffers refilled every few frames.
	UsageDynamic
	// UsageStream marks buffers refilled multiple times per frame.
	UsageStream
)

// IndexFormat is the size of a single index.
type IndexFormat int

const (
	// IndexUint16 indexes up to 65535 vertices.
	IndexUint16 IndexFormat = iota
	// IndexUint32 indexes larger meshes.
	IndexUint32
)

// ByteSize returns the size of one index in bytes.
func (f IndexFormat) ByteSize() int {
	if f == IndexUint32 {
		return 4
	}
	return 2
}

// VertexBuffer is GPU vertex storage.
//
// Dynamic buffers follow a strict streaming discipline: a Fill with
// discard=true invalidates all previous contents, so every draw call
// reading a chunk must be issued before the next discarding Fill. The
// device does not detect violations; callers enforce the ordering.
type VertexBuffer interface {
	// Fill copies sizeBytes from data into the buffer at offsetBytes.
	// discard=true orphans the previous contents first.
	Fill(data unsafe.Pointer, offsetBytes, sizeBytes int, discard bool) error

	// SetDeclaration attaches the vertex layout used when this buffer is bound.
	SetDeclaration(decl *VertexDeclaration)

	// Declaration returns the attached layout, or nil.
	Declaration() *VertexDeclaration

	// SizeBytes returns the buffer capacity.
	SizeBytes() int

	// VertexCount returns capacity in vertices under the attached
	// declaration, or 0 when no declaration is set.
	VertexCount() int

	// Destroy releases the buffer.
	Destroy()
}

// IndexBuffer is GPU index storage.
type IndexBuffer interface {
	// Fill copies sizeBytes from data into the buffer at offsetBytes.
	Fill(data unsafe.Pointer, offsetBytes, sizeBytes int, discard bool) error

	// Format returns the index size.
	Format() IndexFormat

	// Count returns the number of indices the buffer holds.
	Count() int

	// Destroy releases the buffer.
	Destroy()
}
