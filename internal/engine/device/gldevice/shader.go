package gldevice

import (
	"fmt"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/pkg/math"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Engine matrix uniform names every shader may declare.
const (
	uniformWorldMatrix    = "WorldMatrix"
	uniformViewProjMatrix = "ViewProjMatrix"
)

// Shader ids are handed out once and never reused, so uniform-layout
// caches keyed by id stay unambiguous across shader rebuilds.
var nextShaderID uint32

// shader is a linked GL program.
type shader struct {
	id      uint32
	program uint32

	locWorld    int32
	locViewProj int32
}

// NewShader compiles and links a shader program.
func (d *Device) NewShader(vertexSrc, fragmentSrc string) (device.Shader, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("link: %s", string(log))
	}

	nextShaderID++
	s := &shader{
		id:          nextShaderID,
		program:     program,
		locWorld:    gl.GetUniformLocation(program, gl.Str(uniformWorldMatrix+"\x00")),
		locViewProj: gl.GetUniformLocation(program, gl.Str(uniformViewProjMatrix+"\x00")),
	}
	return s, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csource, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(sh, logLen, nil, &log[0])
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return sh, nil
}

// ID returns the stable shader identifier.
func (s *shader) ID() uint32 {
	return s.id
}

// UniformLocation resolves a uniform by name, -1 when absent.
func (s *shader) UniformLocation(name string) int32 {
	return gl.GetUniformLocation(s.program, gl.Str(name+"\x00"))
}

func (s *shader) SendInt(loc int32, v int32) {
	if loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

func (s *shader) SendFloat(loc int32, v float32) {
	if loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

func (s *shader) SendVec2(loc int32, v math.Vec2) {
	if loc >= 0 {
		gl.Uniform2f(loc, v.X, v.Y)
	}
}

func (s *shader) SendVec3(loc int32, v math.Vec3) {
	if loc >= 0 {
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	}
}

func (s *shader) SendVec4(loc int32, v math.Vec4) {
	if loc >= 0 {
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (s *shader) SendColor(loc int32, c math.Color) {
	if loc >= 0 {
		gl.Uniform4f(loc, c.R, c.G, c.B, c.A)
	}
}

func (s *shader) SendMatrix(loc int32, m math.Mat4) {
	if loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// Destroy releases the program.
func (s *shader) Destroy() {
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
}
