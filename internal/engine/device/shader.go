package device

import "github.com/Faultbox/bifrost/pkg/math"

// Shader is a compiled, linked shader program.
//
// Uniform locations are resolved once by name and then addressed by
// location only; a negative location means the uniform is absent and
// sends to it are ignored. Send* methods require the shader to be the
// one currently bound on the device.
type Shader interface {
	// ID returns a process-unique, stable identifier for this program.
	// It never changes for the lifetime of the shader and is never reused
	// while the shader is alive.
	ID() uint32

	// UniformLocation resolves a uniform by name, -1 when absent.
	UniformLocation(name string) int32

	SendInt(loc int32, v int32)
	SendFloat(loc int32, v float32)
	SendVec2(loc int32, v math.Vec2)
	SendVec3(loc int32, v math.Vec3)
	SendVec4(loc int32, v math.Vec4)
	SendColor(loc int32, c math.Color)
	SendMatrix(loc int32, m math.Mat4)

	// Destroy releases the program.
	Destroy()
}
