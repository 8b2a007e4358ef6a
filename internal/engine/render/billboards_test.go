package render

import (
	"testing"
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/material"
	"github.com/Faultbox/bifrost/pkg/math"
)

func makeBillboards(n int) []BillboardData {
	bbs := make([]BillboardData, n)
	for i := range bbs {
		bbs[i] = BillboardData{
			Center: math.Vec3{X: float32(i)},
			Size:   math.Vec2{X: 1, Y: 1},
			SinCos: math.Vec2{X: 0, Y: 1},
			Color:  math.ColorWhite,
		}
	}
	return bbs
}

func TestExpandedBillboardChunking(t *testing.T) {
	// 5000 billboards through a 4096-vertex stream buffer: 1024 per chunk
	// gives five draw calls of 1024, 1024, 1024, 1024 and 904 quads.
	streamBytes := 4096 * int(unsafe.Sizeof(billboardPoint{}))

	dev := newFakeDevice()
	tech, _ := newTestTechnique(t, dev, Config{StreamBufferBytes: streamBytes})

	pipe := material.NewPipeline(newUnlitShader(1), material.OpaqueStates())
	mat := material.New()

	q := tech.Queue()
	q.AddBillboards(0, pipe, mat, makeBillboards(5000))

	tech.drawBillboards(testSceneData(), q.Layer(0))

	wantCounts := []int{1024, 1024, 1024, 1024, 904}
	if len(dev.draws) != len(wantCounts) {
		t.Fatalf("issued %d draw calls, want %d", len(dev.draws), len(wantCounts))
	}
	for i, want := range wantCounts {
		d := dev.draws[i]
		if !d.indexed || d.topology != device.TriangleList {
			t.Errorf("draw %d is not an indexed triangle list", i)
		}
		if d.count != want*6 {
			t.Errorf("draw %d count = %d indices, want %d", i, d.count, want*6)
		}
	}
}

func TestExpandedBillboardExactChunk(t *testing.T) {
	streamBytes := 4096 * int(unsafe.Sizeof(billboardPoint{}))

	dev := newFakeDevice()
	tech, _ := newTestTechnique(t, dev, Config{StreamBufferBytes: streamBytes})

	pipe := material.NewPipeline(newUnlitShader(1), material.OpaqueStates())
	mat := material.New()

	q := tech.Queue()
	q.AddBillboards(0, pipe, mat, makeBillboards(1024))

	tech.drawBillboards(testSceneData(), q.Layer(0))

	if len(dev.draws) != 1 {
		t.Fatalf("issued %d draw calls, want 1", len(dev.draws))
	}
	if dev.draws[0].count != 1024*6 {
		t.Errorf("draw count = %d indices, want %d", dev.draws[0].count, 1024*6)
	}
}

func TestExpandedBillboardVertexLayout(t *testing.T) {
	dev := newFakeDevice()
	tech, _ := newTestTechnique(t, dev, Config{StreamBufferBytes: 64 * 1024})

	pipe := material.NewPipeline(newUnlitShader(1), material.OpaqueStates())
	mat := material.New()

	bb := BillboardData{
		Center: math.Vec3{X: 2, Y: 3, Z: 4},
		Size:   math.Vec2{X: 5, Y: 6},
		SinCos: math.Vec2{X: 0.5, Y: 0.8},
		Color:  math.ColorRed,
	}
	q := tech.Queue()
	q.AddBillboard(0, pipe, mat, bb)

	tech.drawBillboards(testSceneData(), q.Layer(0))

	sb := tech.streamBuffer.(*fakeVertexBuffer)
	if len(sb.fills) != 1 {
		t.Fatalf("stream buffer filled %d times, want 1", len(sb.fills))
	}

	points := unsafe.Slice((*billboardPoint)(unsafe.Pointer(&sb.fills[0].data[0])), 4)
	for i, p := range points {
		if p.position != bb.Center {
			t.Errorf("corner %d position = %v, want %v", i, p.position, bb.Center)
		}
		if p.size != bb.Size || p.sinCos != bb.SinCos {
			t.Errorf("corner %d size/rotation = %v/%v, want %v/%v", i, p.size, p.sinCos, bb.Size, bb.SinCos)
		}
		if p.color != bb.Color {
			t.Errorf("corner %d color = %v, want %v", i, p.color, bb.Color)
		}
		if p.uv != billboardCorners[i] {
			t.Errorf("corner %d uv = %v, want %v", i, p.uv, billboardCorners[i])
		}
	}
}

func TestInstancedBillboardChunking(t *testing.T) {
	recordBytes := int(unsafe.Sizeof(BillboardData{}))

	dev := newFakeDevice().withInstanceBuffer(10 * recordBytes)
	tech, _ := newTestTechnique(t, dev, Config{Instancing: true, StreamBufferBytes: 64 * 1024})

	pipe := material.NewPipeline(newUnlitShader(1), material.OpaqueStates())
	mat := material.New()

	q := tech.Queue()
	q.AddBillboards(0, pipe, mat, makeBillboards(25))

	tech.drawBillboards(testSceneData(), q.Layer(0))

	wantInstances := []int{10, 10, 5}
	if len(dev.draws) != len(wantInstances) {
		t.Fatalf("issued %d draw calls, want %d", len(dev.draws), len(wantInstances))
	}
	for i, want := range wantInstances {
		d := dev.draws[i]
		if !d.instanced || d.indexed {
			t.Errorf("draw %d is not a non-indexed instanced draw", i)
		}
		if d.topology != device.TriangleStrip || d.count != 4 {
			t.Errorf("draw %d = %d vertices of topology %v, want 4-vertex strip", i, d.count, d.topology)
		}
		if d.instances != want {
			t.Errorf("draw %d instances = %d, want %d", i, d.instances, want)
		}
	}
}

func TestInstancedBillboardBulkCopy(t *testing.T) {
	recordBytes := int(unsafe.Sizeof(BillboardData{}))

	dev := newFakeDevice().withInstanceBuffer(100 * recordBytes)
	tech, _ := newTestTechnique(t, dev, Config{Instancing: true, StreamBufferBytes: 64 * 1024})

	pipe := material.NewPipeline(newUnlitShader(1), material.OpaqueStates())
	mat := material.New()

	bbs := makeBillboards(3)
	q := tech.Queue()
	q.AddBillboards(0, pipe, mat, bbs)

	tech.drawBillboards(testSceneData(), q.Layer(0))

	// Records upload byte for byte, no per-field repacking.
	fills := dev.instanceBuffer.fills
	if len(fills) != 1 {
		t.Fatalf("instance buffer filled %d times, want 1", len(fills))
	}
	uploaded := unsafe.Slice((*BillboardData)(unsafe.Pointer(&fills[0].data[0])), 3)
	for i := range bbs {
		if uploaded[i] != bbs[i] {
			t.Errorf("record %d = %+v, want %+v", i, uploaded[i], bbs[i])
		}
	}
}

func TestBillboardsConsumedAfterDraw(t *testing.T) {
	dev := newFakeDevice()
	tech, _ := newTestTechnique(t, dev, Config{StreamBufferBytes: 64 * 1024})

	pipe := material.NewPipeline(newUnlitShader(1), material.OpaqueStates())
	mat := material.New()

	q := tech.Queue()
	q.AddBillboards(0, pipe, mat, makeBillboards(7))

	layer := q.Layer(0)
	tech.drawBillboards(testSceneData(), layer)

	firstPass := len(dev.draws)
	if firstPass == 0 {
		t.Fatal("first pass issued no draw calls")
	}

	// Billboards are single-use per frame: a second pass has nothing left.
	tech.drawBillboards(testSceneData(), layer)
	if len(dev.draws) != firstPass {
		t.Errorf("second pass issued %d extra draw calls, want 0", len(dev.draws)-firstPass)
	}
}
