package render

import (
	"testing"
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
)

func TestQuadIndexBufferPattern(t *testing.T) {
	dev := newFakeDevice()
	shared, err := NewSharedResources(dev)
	if err != nil {
		t.Fatalf("NewSharedResources() error = %v", err)
	}
	defer shared.Destroy()

	ib := shared.QuadIndices.(*fakeIndexBuffer)
	if ib.count != maxQuads*6 {
		t.Fatalf("index buffer holds %d indices, want %d", ib.count, maxQuads*6)
	}
	if len(ib.fills) != 1 {
		t.Fatalf("index buffer filled %d times, want 1", len(ib.fills))
	}

	fill := ib.fills[0]
	if fill.size != maxQuads*6*2 {
		t.Fatalf("index fill of %d bytes, want %d", fill.size, maxQuads*6*2)
	}

	indices := unsafe.Slice((*uint16)(unsafe.Pointer(&fill.data[0])), fill.size/2)
	for i := 0; i < maxQuads; i++ {
		base := uint16(i * 4)
		want := [6]uint16{base, base + 2, base + 1, base + 2, base + 3, base + 1}
		for j := 0; j < 6; j++ {
			if indices[i*6+j] != want[j] {
				t.Fatalf("quad %d index %d = %d, want %d", i, j, indices[i*6+j], want[j])
			}
		}
	}
}

func TestQuadVertexBufferUnitExtents(t *testing.T) {
	dev := newFakeDevice()
	shared, err := NewSharedResources(dev)
	if err != nil {
		t.Fatalf("NewSharedResources() error = %v", err)
	}
	defer shared.Destroy()

	vb := shared.QuadVertices.(*fakeVertexBuffer)
	if len(vb.fills) != 1 {
		t.Fatalf("quad vertex buffer filled %d times, want 1", len(vb.fills))
	}

	fill := vb.fills[0]
	corners := unsafe.Slice((*float32)(unsafe.Pointer(&fill.data[0])), fill.size/4)
	want := []float32{-0.5, -0.5, 0.5, -0.5, -0.5, 0.5, 0.5, 0.5}
	if len(corners) != len(want) {
		t.Fatalf("quad has %d components, want %d", len(corners), len(want))
	}
	for i := range want {
		if corners[i] != want[i] {
			t.Errorf("corner component %d = %f, want %f", i, corners[i], want[i])
		}
	}
}

func TestSharedResourcesInitFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeDevice)
	}{
		{"index buffer allocation fails", func(d *fakeDevice) { d.failIndexBuffer = true }},
		{"vertex buffer allocation fails", func(d *fakeDevice) { d.failVertexBuffer = true }},
		{"sampler allocation fails", func(d *fakeDevice) { d.failSampler = true }},
		{"texture allocation fails", func(d *fakeDevice) { d.failTexture = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			tt.setup(dev)

			shared, err := NewSharedResources(dev)
			if err == nil {
				t.Fatal("NewSharedResources() error = nil, want allocation failure")
			}
			if shared != nil {
				t.Error("NewSharedResources() returned resources alongside an error")
			}
		})
	}
}

func TestBillboardInstanceDeclarationMatchesRecordLayout(t *testing.T) {
	// The instanced path copies BillboardData records straight into the
	// instance buffer; the declaration must describe exactly that memory.
	decl := billboardInstanceDeclaration()

	if decl.Rate != device.RatePerInstance {
		t.Errorf("Rate = %v, want RatePerInstance", decl.Rate)
	}
	if want := int(unsafe.Sizeof(BillboardData{})); decl.Stride != want {
		t.Errorf("Stride = %d, want %d", decl.Stride, want)
	}

	var b BillboardData
	wantOffsets := map[uint32]int{
		device.AttribData0: int(unsafe.Offsetof(b.Center)),
		device.AttribData1: int(unsafe.Offsetof(b.Size)),
		device.AttribData2: int(unsafe.Offsetof(b.Color)),
	}
	for _, attr := range decl.Attributes {
		want, ok := wantOffsets[attr.Location]
		if !ok {
			t.Errorf("unexpected attribute at location %d", attr.Location)
			continue
		}
		if attr.Offset != want {
			t.Errorf("attribute %d offset = %d, want %d", attr.Location, attr.Offset, want)
		}
	}
}

func TestSpriteDeclarationStride(t *testing.T) {
	decl := spriteDeclaration()
	if want := int(unsafe.Sizeof(SpriteVertex{})); decl.Stride != want {
		t.Errorf("Stride = %d, want %d", decl.Stride, want)
	}
	if decl.Rate != device.RatePerVertex {
		t.Errorf("Rate = %v, want RatePerVertex", decl.Rate)
	}
}
