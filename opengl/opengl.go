//go:build !nogl

package opengl

import (
	"fmt"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	hsluv "github.com/hsluv/hsluv-go"

	"github.com/PrincetonUniversity/boidswarm"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	MaxFlockSize int          // capacity of the vertex buffer, in boids
	BoidSize     float64      // body length of a drawn boid, in model units
	Step         func() error // go to next tick
	ForcePause   bool         // step manually only?

	// bounds of default viewport
	Xmin float64
	Ymin float64
	Xmax float64
	Ymax float64
}

// Run runs an interactive simulation in an OpenGL window.
//
// Escape quits, space toggles pausing, right arrow steps while paused
// and R resets the viewport. Scrolling zooms around the cursor.
func Run(m *boidswarm.Model, conf *Config) error {
	// init GLFW and OpenGL
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	// create OpenGL window
	const (
		title  = "Boidswarm"
		width  = 800
		height = 800
	)
	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return err
	}
	w.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return err
	}

	// set background color and enable alpha blending
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	w.SwapBuffers()

	// initialize OpenGL objects
	d, err := newDisplay(conf.MaxFlockSize, conf.BoidSize)
	if err != nil {
		return err
	}

	// handle scrolling zoom
	vp := viewport{{float32(conf.Xmin), float32(conf.Ymin)}, {float32(conf.Xmax), float32(conf.Ymax)}}
	w.SetScrollCallback(func(w *glfw.Window, xo, yo float64) {
		xc, yc := w.GetCursorPos()
		xs, ys := w.GetSize()
		x, y := float32(xc)/float32(xs), (float32(ys)-float32(yc))/float32(ys)
		dx, dy := vp[1].X-vp[0].X, vp[1].Y-vp[0].Y
		z := 0.05 * float32(yo)
		vp[0].X += z * -(x * dx)
		vp[0].Y += z * -(y * dy)
		vp[1].X += z * (1 - x) * dx
		vp[1].Y += z * (1 - y) * dy
		d.draw(m, vp)
		w.SwapBuffers()
	})

	var quit, step bool
	pause := conf.ForcePause
	w.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, mod glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			quit = true
		}
		if key == glfw.KeySpace && action == glfw.Press && !conf.ForcePause {
			pause = !pause
		}
		if key == glfw.KeyRight && (action == glfw.Press || action == glfw.Repeat) {
			if pause {
				pause = false
				step = true
			}
		}
		if key == glfw.KeyR && action == glfw.Press {
			vp = viewport{{float32(conf.Xmin), float32(conf.Ymin)}, {float32(conf.Xmax), float32(conf.Ymax)}}
			d.draw(m, vp)
			w.SwapBuffers()
		}
	})

	for !(quit || w.ShouldClose()) {
		if step {
			pause = true
			step = false
			if err := conf.Step(); err != nil {
				return err
			}
		}
		if !pause {
			if err := conf.Step(); err != nil {
				return err
			}
		}
		d.draw(m, vp)
		w.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// A viewport is a rectangle delimiting the area of simulation space shown on screen.
// The first point is the bottom left corner, the second point is the top right corner.
type viewport [2]struct{ X, Y float32 }

// A vertex is one corner of a boid triangle as sent to OpenGL.
type vertex struct {
	X, Y       float32
	R, G, B, A float32
}

// display contains all the OpenGL objects required to display the simulation.
type display struct {
	vao  uint32 // vertex array object
	prog uint32
	buf  uint32
	size float32 // boid body length
	max  int     // buffer capacity in boids
	attr struct {
		pos   uint32
		color uint32
	}
	uni struct {
		vp int32 // viewport
	}
}

// draw updates the OpenGL buffers and draws the flock on screen.
func (d *display) draw(m *boidswarm.Model, vp viewport) {
	d.updateViewport(vp)
	n := d.updateBoids(m.Boids)

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(d.prog)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(3*n))
}

// updateViewport sends the new viewport to OpenGL.
func (d *display) updateViewport(vp viewport) {
	gl.UseProgram(d.prog)
	gl.Uniform2fv(d.uni.vp, 2, &vp[0].X)
}

// updateBoids rebuilds the triangle vertices from boid states and
// returns the number of boids staged for drawing. Each boid becomes
// an isosceles triangle pointing along its heading, tinted by the
// heading angle.
func (d *display) updateBoids(boids []boidswarm.Boid) int {
	if len(boids) > d.max {
		boids = boids[:d.max]
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)
	const n = unsafe.Sizeof(vertex{})
	q := (uintptr)(gl.MapBuffer(gl.ARRAY_BUFFER, gl.WRITE_ONLY))
	if q == 0 {
		return 0
	}
	k := uintptr(0)
	for _, b := range boids {
		θ := math32.Atan2(float32(b.Vel.Y), float32(b.Vel.X))
		sin, cos := math32.Sincos(θ)
		x, y := float32(b.Pos.X), float32(b.Pos.Y)

		hue := float64(θ) / math32.Pi * 180
		if hue < 0 {
			hue += 360
		}
		cr, cg, cb := hsluv.HsluvToRGB(hue, 100, 65)
		r, g, bl := float32(cr), float32(cg), float32(cb)

		nose := vertex{x + cos*d.size, y + sin*d.size, r, g, bl, 1}
		left := vertex{x - cos*d.size/2 - sin*d.size/3, y - sin*d.size/2 + cos*d.size/3, r, g, bl, 0.9}
		right := vertex{x - cos*d.size/2 + sin*d.size/3, y - sin*d.size/2 - cos*d.size/3, r, g, bl, 0.9}
		for _, v := range [3]vertex{nose, left, right} {
			*(*vertex)(unsafe.Pointer(q + k*n)) = v
			k++
		}
	}
	gl.UnmapBuffer(gl.ARRAY_BUFFER)

	return len(boids)
}

// newDisplay compiles shaders and initializes a display.
func newDisplay(maxFlockSize int, boidSize float64) (*display, error) {
	d := new(display)
	d.max = maxFlockSize
	d.size = float32(boidSize)
	if d.size <= 0 {
		d.size = 1
	}

	// compile and link shaders
	var err error
	d.prog, err = makeProg([]shader{
		{"Vertex", vertexShader, gl.CreateShader(gl.VERTEX_SHADER)},
		{"Fragment", fragmentShader, gl.CreateShader(gl.FRAGMENT_SHADER)},
	})
	if err != nil {
		return nil, err
	}

	// uniform location cannot be specified in the shaders in OpenGL 3.3 core
	d.uni.vp = gl.GetUniformLocation(d.prog, gl.Str("vp\x00"))

	// attribute locations are specified in the shaders with layout(location=n)
	d.attr = struct{ pos, color uint32 }{0, 1}

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.buf)

	gl.BufferData(gl.ARRAY_BUFFER, 3*maxFlockSize*int(unsafe.Sizeof(vertex{})), nil, gl.STREAM_DRAW)

	const n = int32(unsafe.Sizeof(vertex{}))

	gl.EnableVertexAttribArray(d.attr.pos)
	gl.VertexAttribPointer(d.attr.pos, 2, gl.FLOAT, false, n, unsafe.Pointer(unsafe.Offsetof(vertex{}.X)))

	gl.EnableVertexAttribArray(d.attr.color)
	gl.VertexAttribPointer(d.attr.color, 4, gl.FLOAT, false, n, unsafe.Pointer(unsafe.Offsetof(vertex{}.R)))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return d, nil
}

// A shader wraps an OpenGL shader.
type shader struct {
	name   string
	src    string
	shader uint32
}

// makeProg builds OpenGL programs.
func makeProg(shaders []shader) (uint32, error) {
	var fail bool
	for _, s := range shaders {
		src := s.src + "\x00"
		str, free := gl.Strs(src)
		gl.ShaderSource(s.shader, 1, str, nil)
		free()
		gl.CompileShader(s.shader)
		var status int32
		gl.GetShaderiv(s.shader, gl.COMPILE_STATUS, &status)
		if status != gl.TRUE {
			var n int32
			gl.GetShaderiv(s.shader, gl.INFO_LOG_LENGTH, &n)
			log := make([]uint8, n)
			gl.GetShaderInfoLog(s.shader, n, &n, &log[0])
			fmt.Printf("### %s shader compilation error ###\n\n%s\n\n", s.name, gl.GoStr(&log[0]))
			fail = true
			gl.DeleteShader(s.shader)
		}
	}
	if fail {
		return 0, fmt.Errorf("boidswarm: GLSL errors")
	}
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s.shader)
	}
	gl.LinkProgram(prog)

	return prog, nil
}
