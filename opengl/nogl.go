//go:build nogl

package opengl

import (
	"fmt"
	"os"

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

// Run returns an error explaining that OpenGL support is disabled.
func Run(m *boidswarm.Model, conf *Config) error {
	return fmt.Errorf("%s was built without OpenGL support", os.Args[0])
}
