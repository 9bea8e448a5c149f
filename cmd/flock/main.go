// Command flock runs boidswarm: flocking simulations on a periodic domain.
//
// Usage
//
// The flock command takes one optional argument:
//  flock [config_file]
// It is the path to a TOML config file.
// If no config file is specified, an interactive simulation
// with default parameters will run in an OpenGL window.
//
// Config file
//
// The config file is written in TOML. If you are not familiar with TOML, fear not!
// It's basically a modern version of INI. Very very simple.
// See https://github.com/toml-lang/toml for the full language spec.
//
// Modes
//
// The config picks the mode. Output records Steps ticks to an HDF5 file.
// Serve runs the simulation behind a small web server and streams it to
// browsers over websockets. Replay plays back the boids dataset of a
// previously recorded HDF5 file; the domain extent is taken from the
// current config, so replay a file with the config that recorded it.
// With none of the three set, an interactive simulation runs live in an
// OpenGL window. Output takes precedence over Serve.
//
// Interactive mode
//
// In interactive mode, the simulation can be paused/resumed with space.
// While in pause, pressing right arrow will perform a single step.
// Pressing R resets the viewport and scrolling zooms around the cursor.
// Pressing Esc or closing the window will quit.
package main

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/PrincetonUniversity/boidswarm/hdf5"
	"github.com/PrincetonUniversity/boidswarm/opengl"
	"github.com/PrincetonUniversity/boidswarm/vizserver"
	"github.com/ttacon/chalk"
	"go.uber.org/multierr"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

const usage = `Usage: flock [config_file]

The first argument is optional and is the path to a TOML config file.
If no config file is specified, an interactive simulation
with default parameters will run in an OpenGL window.
`

func init() {
	// Most OpenGL functions have to run from the main thread.
	// This is needed to arrange that main() runs on main thread.
	// See https://github.com/golang/go/wiki/LockOSThread for more info.
	runtime.LockOSThread()
}

func main() {
	var conf *Config
	var err error
	switch len(os.Args) {
	case 1:
		conf = DefaultConf
	case 2:
		conf, err = ParseConfig(os.Args[1])
	default:
		err = fmt.Errorf("%d arguments provided (0 required, 1 optional)\n\n%s", len(os.Args)-1, usage)
	}
	if err != nil {
		Fatal(err)
	}

	// replay has no live model to set up
	if conf.Replay != "" {
		if err := replay(conf); err != nil {
			Fatal(err)
		}
		return
	}

	// setup simulation
	m, err := setup(conf)
	if err != nil {
		Fatal(err)
	}

	step := func() error {
		rep, err := m.Step()
		if err != nil {
			return err
		}
		if len(rep.Held) > 0 {
			Warnf("tick %d: %d boids held their heading", rep.Tick, len(rep.Held))
		}
		return nil
	}

	// run interactively or not depending on config
	switch {
	case conf.Output != "":
		err = record(m, conf, step)
	case conf.Serve != "":
		err = vizserver.Run(m, &vizserver.Config{
			Addr:   conf.Serve,
			Period: time.Duration(conf.PeriodMs) * time.Millisecond,
			Steps:  conf.Steps,
			Step:   step,
		})
	default:
		err = opengl.Run(m, &opengl.Config{
			MaxFlockSize: conf.FlockSize,
			Step:         step,
			Xmin:         0,
			Ymin:         0,
			Xmax:         conf.ExtentX,
			Ymax:         conf.ExtentY,
		})
	}
	if err != nil {
		Fatal(err)
	}
}

// Fatal prints an error on the standard error and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "%sError: %s%s\n", chalk.Red, err, chalk.Reset)
	os.Exit(1)
}

// Warnf prints a warning on the standard error without interrupting the run.
func Warnf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s%s%s\n", chalk.Yellow, fmt.Sprintf(format, v...), chalk.Reset)
}

// setup initializes the flock with uniform random positions over the
// domain and uniform random headings.
func setup(conf *Config) (*boidswarm.Model, error) {
	seed := uint64(conf.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	p := boidswarm.Params{
		Speed:            conf.Speed,
		VisualRadius:     conf.VisualRadius,
		SeparationRadius: conf.SeparationRadius,
		CohereFactor:     conf.CohereFactor,
		SeparateFactor:   conf.SeparateFactor,
		MatchFactor:      conf.MatchFactor,
	}
	extent := r2.Vec{X: conf.ExtentX, Y: conf.ExtentY}
	m, err := boidswarm.New(conf.FlockSize, extent, p, func(i int) (pos, vel r2.Vec) {
		pos = r2.Vec{X: conf.ExtentX * rng.Float64(), Y: conf.ExtentY * rng.Float64()}
		sin, cos := math.Sincos(2 * math.Pi * rng.Float64())
		vel = r2.Vec{X: cos, Y: sin}
		return pos, vel
	})
	if err != nil {
		return nil, err
	}
	m.Workers = conf.Workers
	return m, nil
}

// record runs the simulation headless and records it to an HDF5 file.
func record(m *boidswarm.Model, conf *Config, step func() error) error {
	return hdf5.Run(m, &hdf5.Config{
		Output: conf.Output,
		Steps:  conf.Steps,
		Step:   step,
		Attrs:  conf,
		Datasets: []*hdf5.Dataset{
			{
				Name: "boids",
				Val:  hdf5.Record{},
				Dims: []int{conf.FlockSize},
				Data: records(conf),
			},
			{
				Name: "polarization",
				Val:  float64(0),
				Data: func(m *boidswarm.Model) interface{} {
					p := boidswarm.Polarization(m)
					return &p
				},
			},
		},
	})
}

// records returns a function that captures the boids dataset of one tick.
func records(conf *Config) func(m *boidswarm.Model) interface{} {
	return func(m *boidswarm.Model) interface{} {
		groups, err := boidswarm.Groups(m, conf.MaxGroupDist)
		if err != nil {
			Fatal(err)
		}
		recs := make([]hdf5.Record, len(m.Boids))
		for i, b := range m.Boids {
			recs[i] = hdf5.Record{Pos: b.Pos, Vel: b.Vel, Group: groups[i]}
		}
		return &recs
	}
}

// replay plays back the boids dataset of a recorded HDF5 file.
func replay(conf *Config) (err error) {
	loader, size, err := hdf5.NewLoader(conf.Replay, "boids")
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, loader.Close())
	}()

	m := &boidswarm.Model{
		Boids: make([]boidswarm.Boid, size),
		Torus: boidswarm.Torus{Extent: r2.Vec{X: conf.ExtentX, Y: conf.ExtentY}},
	}
	if err := loader.Load(&m.Boids); err != nil {
		return err
	}
	return opengl.Run(m, &opengl.Config{
		MaxFlockSize: size,
		Step:         func() error { return loader.Load(&m.Boids) },
		Xmin:         0,
		Ymin:         0,
		Xmax:         conf.ExtentX,
		Ymax:         conf.ExtentY,
	})
}
