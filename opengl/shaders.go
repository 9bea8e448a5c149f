//go:build !nogl

package opengl

// vertexShader maps model coordinates into the viewport rectangle.
const vertexShader = `#version 330 core

layout(location = 0) in vec2 pos;
layout(location = 1) in vec4 color;

uniform vec2 vp[2];

out vec4 vcolor;

void main() {
	vec2 p = 2 * (pos - vp[0]) / (vp[1] - vp[0]) - 1;
	gl_Position = vec4(p, 0, 1);
	vcolor = color;
}
`

const fragmentShader = `#version 330 core

in vec4 vcolor;

out vec4 color;

void main() {
	color = vcolor;
}
`
