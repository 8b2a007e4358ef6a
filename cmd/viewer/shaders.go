package main

import (
	"fmt"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/material"
)

// Light slot layout shared by every lit shader. The renderer resolves the
// slot stride from the Lights[0]/Lights[1] locations, so the struct must
// stay identical across programs.
const lightBlock = `
struct Light {
	int  type;
	vec4 color;
	vec2 factors;      // x: ambient, y: diffuse
	vec4 parameters1;  // dir.xyz | pos.xyz + attenuation
	vec4 parameters2;  // spot dir.xyz + inverse radius
	vec2 parameters3;  // spot cone cosines
	int  shadowMapping;
};
uniform Light Lights[3];
uniform mat4 LightViewProjMatrix[3];
uniform sampler2D ShadowMaps[3];

float shadowFactor(int i, vec3 worldPos) {
	if (Lights[i].shadowMapping == 0) {
		return 1.0;
	}
	vec4 clip = LightViewProjMatrix[i] * vec4(worldPos, 1.0);
	vec3 ndc = clip.xyz / clip.w * 0.5 + 0.5;
	if (ndc.z > 1.0) {
		return 1.0;
	}
	float depth = texture(ShadowMaps[i], ndc.xy).r;
	return ndc.z - 0.0025 > depth ? 0.35 : 1.0;
}

vec3 shade(int i, vec3 normal, vec3 worldPos, vec3 eyeDir) {
	float ambient = Lights[i].factors.x;
	vec3 toLight;
	float attenuation = 1.0;

	if (Lights[i].type == 0) {
		toLight = -Lights[i].parameters1.xyz;
	} else {
		vec3 delta = Lights[i].parameters1.xyz - worldPos;
		float dist = length(delta);
		toLight = delta / max(dist, 0.0001);
		attenuation = clamp(1.0 - dist * Lights[i].parameters2.w, 0.0, 1.0)
			* Lights[i].parameters1.w;
		if (Lights[i].type == 2) {
			float coneCos = dot(-toLight, Lights[i].parameters2.xyz);
			attenuation *= smoothstep(Lights[i].parameters3.y, Lights[i].parameters3.x, coneCos);
		}
	}

	float diffuse = max(dot(normal, toLight), 0.0) * Lights[i].factors.y;
	float specular = 0.0;
	if (diffuse > 0.0) {
		vec3 h = normalize(toLight + eyeDir);
		specular = pow(max(dot(normal, h), 0.0), 32.0) * 0.25;
	}

	float shadow = shadowFactor(i, worldPos);
	return Lights[i].color.rgb * (ambient + (diffuse + specular) * shadow) * attenuation;
}

vec3 lighting(vec3 normal, vec3 worldPos, vec3 eyeDir) {
	vec3 total = vec3(0.0);
	for (int i = 0; i < 3; i++) {
		if (Lights[i].type < 0) {
			break;
		}
		total += shade(i, normal, worldPos, eyeDir);
	}
	return total;
}
`

const modelVertSrc = `#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inTexCoord;

uniform mat4 WorldMatrix;
uniform mat4 ViewProjMatrix;

out vec3 fragNormal;
out vec3 fragWorldPos;
out vec2 fragTexCoord;

void main() {
	vec4 world = WorldMatrix * vec4(inPosition, 1.0);
	fragWorldPos = world.xyz;
	fragNormal = mat3(WorldMatrix) * inNormal;
	fragTexCoord = inTexCoord;
	gl_Position = ViewProjMatrix * world;
}
`

const modelInstancedVertSrc = `#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inTexCoord;
layout(location = 4) in vec4 inWorld0;
layout(location = 5) in vec4 inWorld1;
layout(location = 6) in vec4 inWorld2;
layout(location = 7) in vec4 inWorld3;

uniform mat4 ViewProjMatrix;

out vec3 fragNormal;
out vec3 fragWorldPos;
out vec2 fragTexCoord;

void main() {
	mat4 world = mat4(inWorld0, inWorld1, inWorld2, inWorld3);
	vec4 worldPos = world * vec4(inPosition, 1.0);
	fragWorldPos = worldPos.xyz;
	fragNormal = mat3(world) * inNormal;
	fragTexCoord = inTexCoord;
	gl_Position = ViewProjMatrix * worldPos;
}
`

const modelFragSrc = `#version 410 core
in vec3 fragNormal;
in vec3 fragWorldPos;
in vec2 fragTexCoord;

uniform vec3 EyePosition;
uniform vec4 SceneAmbient;
uniform sampler2D DiffuseTexture;
` + lightBlock + `
out vec4 outColor;

void main() {
	vec3 normal = normalize(fragNormal);
	vec3 eyeDir = normalize(EyePosition - fragWorldPos);
	vec4 base = texture(DiffuseTexture, fragTexCoord);
	vec3 lit = SceneAmbient.rgb + lighting(normal, fragWorldPos, eyeDir);
	outColor = vec4(base.rgb * lit, base.a);
}
`

const spriteVertSrc = `#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 2) in vec2 inTexCoord;
layout(location = 3) in vec4 inColor;

uniform mat4 WorldMatrix;
uniform mat4 ViewProjMatrix;

out vec4 fragColor;
out vec2 fragTexCoord;

void main() {
	fragColor = inColor;
	fragTexCoord = inTexCoord;
	gl_Position = ViewProjMatrix * WorldMatrix * vec4(inPosition, 1.0);
}
`

const spriteFragSrc = `#version 410 core
in vec4 fragColor;
in vec2 fragTexCoord;

uniform vec4 SceneAmbient;
uniform sampler2D DiffuseTexture;
uniform sampler2D TextureOverlay;

out vec4 outColor;

void main() {
	vec4 base = texture(DiffuseTexture, fragTexCoord)
		* texture(TextureOverlay, fragTexCoord);
	outColor = base * fragColor * vec4(SceneAmbient.rgb, 1.0);
}
`

// Expanded billboards carry the quad center in the position attribute;
// the corner offset is reconstructed from the texture coordinate.
const billboardVertSrc = `#version 410 core
layout(location = 0) in vec3 inCenter;
layout(location = 2) in vec2 inTexCoord;
layout(location = 3) in vec4 inColor;
layout(location = 4) in vec4 inSizeRot; // size.xy, sin, cos

uniform mat4 ViewProjMatrix;
uniform vec3 EyePosition;

out vec4 fragColor;
out vec2 fragTexCoord;

void main() {
	vec2 corner = (inTexCoord - 0.5) * vec2(1.0, -1.0) * inSizeRot.xy;
	vec2 rotated = vec2(
		corner.x * inSizeRot.w - corner.y * inSizeRot.z,
		corner.x * inSizeRot.z + corner.y * inSizeRot.w);

	vec3 forward = normalize(inCenter - EyePosition);
	vec3 right = normalize(cross(vec3(0.0, 1.0, 0.0), forward));
	vec3 up = cross(forward, right);

	vec3 world = inCenter + right * rotated.x + up * rotated.y;
	fragColor = inColor;
	fragTexCoord = inTexCoord;
	gl_Position = ViewProjMatrix * vec4(world, 1.0);
}
`

// Instanced billboards expand the shared unit quad per instance.
const billboardInstancedVertSrc = `#version 410 core
layout(location = 0) in vec2 inCorner;
layout(location = 4) in vec3 inCenter;
layout(location = 5) in vec4 inSizeRot; // size.xy, sin, cos
layout(location = 6) in vec4 inColor;

uniform mat4 ViewProjMatrix;
uniform vec3 EyePosition;

out vec4 fragColor;
out vec2 fragTexCoord;

void main() {
	vec2 corner = inCorner * inSizeRot.xy;
	vec2 rotated = vec2(
		corner.x * inSizeRot.w - corner.y * inSizeRot.z,
		corner.x * inSizeRot.z + corner.y * inSizeRot.w);

	vec3 forward = normalize(inCenter - EyePosition);
	vec3 right = normalize(cross(vec3(0.0, 1.0, 0.0), forward));
	vec3 up = cross(forward, right);

	vec3 world = inCenter + right * rotated.x + up * rotated.y;
	fragColor = inColor;
	fragTexCoord = inCorner + 0.5;
	gl_Position = ViewProjMatrix * vec4(world, 1.0);
}
`

const billboardFragSrc = `#version 410 core
in vec4 fragColor;
in vec2 fragTexCoord;

uniform sampler2D DiffuseTexture;

out vec4 outColor;

void main() {
	outColor = texture(DiffuseTexture, fragTexCoord) * fragColor;
}
`

// Depth-only program for the shadow pass.
const depthVertSrc = `#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 WorldMatrix;
uniform mat4 ViewProjMatrix;

void main() {
	gl_Position = ViewProjMatrix * WorldMatrix * vec4(inPosition, 1.0);
}
`

const depthFragSrc = `#version 410 core
void main() {}
`

// shaderSet owns the viewer's compiled programs and their pipelines.
type shaderSet struct {
	model     *material.Pipeline
	sprite    *material.Pipeline
	billboard *material.Pipeline

	depth device.Shader

	shaders []device.Shader
}

// buildShaders compiles every program and wires sampler units. GL 4.1 has
// no binding layout qualifiers, so sampler uniforms are assigned once
// after linking.
func buildShaders(dev device.Device) (*shaderSet, error) {
	s := &shaderSet{}

	compile := func(name, vert, frag string) (device.Shader, error) {
		sh, err := dev.NewShader(vert, frag)
		if err != nil {
			s.destroy()
			return nil, fmt.Errorf("failed to build %s shader: %w", name, err)
		}
		s.shaders = append(s.shaders, sh)
		bindSamplerUnits(dev, sh)
		return sh, nil
	}

	model, err := compile("model", modelVertSrc, modelFragSrc)
	if err != nil {
		return nil, err
	}
	modelInstanced, err := compile("instanced model", modelInstancedVertSrc, modelFragSrc)
	if err != nil {
		return nil, err
	}
	sprite, err := compile("sprite", spriteVertSrc, spriteFragSrc)
	if err != nil {
		return nil, err
	}
	billboard, err := compile("billboard", billboardVertSrc, billboardFragSrc)
	if err != nil {
		return nil, err
	}
	billboardInstanced, err := compile("instanced billboard", billboardInstancedVertSrc, billboardFragSrc)
	if err != nil {
		return nil, err
	}
	s.depth, err = compile("depth", depthVertSrc, depthFragSrc)
	if err != nil {
		return nil, err
	}

	s.model = material.NewPipeline(model, material.OpaqueStates())
	s.model.SetVariant(material.ShaderInstancing, modelInstanced)

	s.sprite = material.NewPipeline(sprite, material.TranslucentStates())

	s.billboard = material.NewPipeline(billboard, material.TranslucentStates())
	s.billboard.SetVariant(
		material.ShaderBillboard|material.ShaderInstancing|material.ShaderVertexColor,
		billboardInstanced)

	return s, nil
}

// bindSamplerUnits assigns the fixed texture units to a freshly linked
// program. The overlay unit is sent per frame by the renderer instead.
func bindSamplerUnits(dev device.Device, sh device.Shader) {
	dev.BindShader(sh)
	if loc := sh.UniformLocation("DiffuseTexture"); loc >= 0 {
		sh.SendInt(loc, device.TextureUnitDiffuse)
	}
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("ShadowMaps[%d]", i)
		if loc := sh.UniformLocation(name); loc >= 0 {
			sh.SendInt(loc, int32(device.TextureUnitShadow+i))
		}
	}
}

func (s *shaderSet) destroy() {
	for _, sh := range s.shaders {
		sh.Destroy()
	}
	s.shaders = nil
}
