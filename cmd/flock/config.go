package main

import (
	"github.com/BurntSushi/toml"
)

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Output is a filename (path) for an HDF5 output file.
	// Serve is a TCP listen address for the live web view.
	// Replay is the path of a previously recorded HDF5 file to play back.
	// If all three are empty, an interactive OpenGL simulation runs.
	Output string
	Serve  string
	Replay string

	FlockSize int   // number of boids
	Steps     int   // number of ticks (hdf5 and serve only)
	Seed      int64 // PRNG seed; 0 means seed from the clock
	Workers   int   // goroutines per tick; 0 or 1 means serial

	// Domain parameters
	ExtentX float64 // unit: body length
	ExtentY float64 // unit: body length

	// Boid parameters
	Speed            float64 // unit: body length/tick
	VisualRadius     float64 // unit: body length
	SeparationRadius float64 // unit: body length
	CohereFactor     float64 // unit: 1
	SeparateFactor   float64 // unit: 1
	MatchFactor      float64 // unit: 1

	// Extra computations parameters
	MaxGroupDist float64 // unit: body length

	// Live view parameters
	PeriodMs int // unit: ms/tick (serve only)
}

// DefaultConf are the default parameters.
var DefaultConf = &Config{
	Output:           "",
	Serve:            "",
	Replay:           "",
	FlockSize:        100,
	Steps:            2000,
	Seed:             0,
	Workers:          0,
	ExtentX:          100,
	ExtentY:          100,
	Speed:            1.0,
	VisualRadius:     5.0,
	SeparationRadius: 4.0,
	CohereFactor:     0.25,
	SeparateFactor:   0.25,
	MatchFactor:      0.04,
	MaxGroupDist:     5,
	PeriodMs:         50,
}

// ParseConfig parses the TOML config file whose path is provided.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := DefaultConf
	_, err := toml.DecodeFile(path, conf)
	return conf, err
}
