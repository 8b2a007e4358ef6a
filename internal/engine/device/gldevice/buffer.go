package gldevice

import (
	"fmt"
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// vertexBuffer is GL vertex storage. Discarding fills orphan the store
// with a nil BufferData of the same size before writing, so the driver
// never stalls on in-flight draws reading the old contents.
type vertexBuffer struct {
	id    uint32
	size  int
	usage uint32
	decl  *device.VertexDeclaration
}

// NewVertexBuffer allocates a vertex buffer of sizeBytes.
func (d *Device) NewVertexBuffer(sizeBytes int, usage device.Usage) (device.VertexBuffer, error) {
	if sizeBytes <= 0 {
		return nil, fmt.Errorf("invalid vertex buffer size %d", sizeBytes)
	}
	buf := &vertexBuffer{size: sizeBytes, usage: glUsage(usage)}
	gl.GenBuffers(1, &buf.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.id)
	gl.BufferData(gl.ARRAY_BUFFER, sizeBytes, nil, buf.usage)
	if err := glError("vertex buffer allocation"); err != nil {
		gl.DeleteBuffers(1, &buf.id)
		return nil, err
	}
	return buf, nil
}

// Fill copies data into the buffer, orphaning previous contents when
// discard is set.
func (b *vertexBuffer) Fill(data unsafe.Pointer, offsetBytes, sizeBytes int, discard bool) error {
	if offsetBytes+sizeBytes > b.size {
		return fmt.Errorf("fill of %d bytes at %d exceeds buffer size %d", sizeBytes, offsetBytes, b.size)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	if discard {
		gl.BufferData(gl.ARRAY_BUFFER, b.size, nil, b.usage)
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, offsetBytes, sizeBytes, data)
	return nil
}

// SetDeclaration attaches the vertex layout.
func (b *vertexBuffer) SetDeclaration(decl *device.VertexDeclaration) {
	b.decl = decl
}

// Declaration returns the attached layout.
func (b *vertexBuffer) Declaration() *device.VertexDeclaration {
	return b.decl
}

// SizeBytes returns the buffer capacity.
func (b *vertexBuffer) SizeBytes() int {
	return b.size
}

// VertexCount returns capacity in vertices under the attached declaration.
func (b *vertexBuffer) VertexCount() int {
	if b.decl == nil || b.decl.Stride == 0 {
		return 0
	}
	return b.size / b.decl.Stride
}

// Destroy releases the buffer.
func (b *vertexBuffer) Destroy() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

// indexBuffer is GL index storage.
type indexBuffer struct {
	id     uint32
	count  int
	format device.IndexFormat
	usage  uint32
}

// NewIndexBuffer allocates an index buffer holding count indices.
func (d *Device) NewIndexBuffer(count int, format device.IndexFormat, usage device.Usage) (device.IndexBuffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid index buffer count %d", count)
	}
	buf := &indexBuffer{count: count, format: format, usage: glUsage(usage)}
	gl.GenBuffers(1, &buf.id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.id)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, count*format.ByteSize(), nil, buf.usage)
	if err := glError("index buffer allocation"); err != nil {
		gl.DeleteBuffers(1, &buf.id)
		return nil, err
	}
	return buf, nil
}

// Fill copies data into the buffer.
func (b *indexBuffer) Fill(data unsafe.Pointer, offsetBytes, sizeBytes int, discard bool) error {
	size := b.count * b.format.ByteSize()
	if offsetBytes+sizeBytes > size {
		return fmt.Errorf("fill of %d bytes at %d exceeds buffer size %d", sizeBytes, offsetBytes, size)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.id)
	if discard {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, size, nil, b.usage)
	}
	gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, offsetBytes, sizeBytes, data)
	return nil
}

// Format returns the index size.
func (b *indexBuffer) Format() device.IndexFormat {
	return b.format
}

// Count returns the number of indices.
func (b *indexBuffer) Count() int {
	return b.count
}

// Destroy releases the buffer.
func (b *indexBuffer) Destroy() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

func glUsage(u device.Usage) uint32 {
	switch u {
	case device.UsageDynamic:
		return gl.DYNAMIC_DRAW
	case device.UsageStream:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

// glError drains the GL error queue, wrapping the first error found.
func glError(context string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		for gl.GetError() != gl.NO_ERROR {
		}
		return fmt.Errorf("%s: GL error 0x%04x", context, code)
	}
	return nil
}
