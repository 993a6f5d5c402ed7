package main

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/mpingram/chip8vm/cpu"
)

const vertexShaderSource = `
#version 410 core
layout(location = 0) in vec2 position;
layout(location = 1) in vec2 texCoord;
out vec2 fragTexCoord;
void main() {
	fragTexCoord = texCoord;
	gl_Position = vec4(position, 0.0, 1.0);
}
` + "\x00"

const fragmentShaderSource = `
#version 410 core
in vec2 fragTexCoord;
out vec4 color;
uniform sampler2D screen;
void main() {
	float lit = texture(screen, fragTexCoord).r;
	color = vec4(lit, lit, lit, 1.0);
}
` + "\x00"

// screen quad as a triangle strip: x, y, u, v. Texture row 0 is the top row.
var quadVertices = []float32{
	-1, 1, 0, 0,
	-1, -1, 0, 1,
	1, 1, 1, 0,
	1, -1, 1, 1,
}

// latestFrame holds the newest frame that has not been drawn yet. Frames
// arriving faster than the window redraws replace the pending one.
type latestFrame chan cpu.Frame

func newLatestFrame() latestFrame {
	return make(latestFrame, 1)
}

// Render implements emulator.Display.
func (f latestFrame) Render(frame cpu.Frame) {
	for {
		select {
		case f <- frame:
			return
		default:
		}
		select {
		case <-f:
		default:
		}
	}
}

// framePixels converts a frame into one luminance byte per pixel.
func framePixels(frame cpu.Frame, pixels []byte) {
	for y, row := range frame {
		for x, lit := range row {
			var v byte
			if lit {
				v = 0xFF
			}
			pixels[y*cpu.ScreenWidth+x] = v
		}
	}
}

// OpenGLRenderer draws Chip-8 frames as a texture stretched over the window.
// All methods must be called from the thread owning the GL context.
type OpenGLRenderer struct {
	program uint32
	vao     uint32
	vbo     uint32
	texture uint32
	pixels  []byte
}

// NewOpenGLRenderer initializes OpenGL for the current context.
func NewOpenGLRenderer() (*OpenGLRenderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing opengl: %w", err)
	}

	program, err := newProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, err
	}
	r := &OpenGLRenderer{
		program: program,
		pixels:  make([]byte, cpu.ScreenWidth*cpu.ScreenHeight),
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))

	gl.GenTextures(1, &r.texture)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, cpu.ScreenWidth, cpu.ScreenHeight, 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(r.pixels))

	gl.UseProgram(r.program)
	gl.Uniform1i(gl.GetUniformLocation(r.program, gl.Str("screen\x00")), 0)
	gl.ClearColor(0, 0, 0, 1)
	return r, nil
}

// Draw uploads frame and redraws the quad into a viewport of the given size.
func (r *OpenGLRenderer) Draw(frame cpu.Frame, width, height int) {
	framePixels(frame, r.pixels)

	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, cpu.ScreenWidth, cpu.ScreenHeight,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(r.pixels))

	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

// Delete frees the GL objects.
func (r *OpenGLRenderer) Delete() {
	gl.DeleteTextures(1, &r.texture)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteProgram(r.program)
}

func newProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("compiling vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("compiling fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("linking shader program: %s", strings.TrimRight(msg, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	sources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, sources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", strings.TrimRight(msg, "\x00"))
	}
	return shader, nil
}
