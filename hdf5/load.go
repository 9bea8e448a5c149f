package hdf5

import (
	"fmt"

	"gonum.org/v1/hdf5"

	"github.com/PrincetonUniversity/boidswarm"
)

// A Loader sequentially loads per-boid records from an HDF5 dataset,
// cycling back to the first tick after the last.
type Loader struct {
	i uint // index of current slice
	n uint // total number of slices

	data []Record // record buffer

	file   *hdf5.File
	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// NewLoader opens a dataset in an HDF5 file and returns an
// initialized loader along with the number of boids per tick.
func NewLoader(path, dataset string) (*Loader, int, error) {
	l := new(Loader)
	var err error
	l.file, err = hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, 0, err
	}
	l.dset, err = l.file.OpenDataset(dataset)
	if err != nil {
		checkClose(&err, l.file)
		return nil, 0, err
	}
	l.fspace = l.dset.Space()
	dims, _, err := l.fspace.SimpleExtentDims()
	if err != nil {
		checkClose(&err, l.dset)
		checkClose(&err, l.file)
		return nil, 0, err
	}
	if len(dims) != 2 {
		checkClose(&err, l.fspace)
		checkClose(&err, l.dset)
		checkClose(&err, l.file)
		return nil, 0, fmt.Errorf("loader: expected 2 dimensions, got %d", len(dims))
	}
	l.n = dims[0]

	l.mspace, err = hdf5.CreateSimpleDataspace(dims[1:], nil)
	if err != nil {
		checkClose(&err, l.fspace)
		checkClose(&err, l.dset)
		checkClose(&err, l.file)
		return nil, 0, err
	}

	start := []uint{0, 0}
	count := []uint{1, dims[1]}
	if err := l.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, l.mspace)
		checkClose(&err, l.fspace)
		checkClose(&err, l.dset)
		checkClose(&err, l.file)
		return nil, 0, err
	}

	l.data = make([]Record, dims[1])

	return l, int(dims[1]), nil
}

// Load overwrites boids with the next recorded tick. Only positions,
// headings and ids are restored.
func (l *Loader) Load(boids *[]boidswarm.Boid) error {
	start := []uint{l.i, 0}
	if err := l.fspace.SetOffset(start); err != nil {
		return err
	}
	l.i = (l.i + 1) % l.n

	if err := l.dset.ReadSubset(&l.data, l.mspace, l.fspace); err != nil {
		return err
	}

	*boids = (*boids)[:0]
	for i, rec := range l.data {
		*boids = append(*boids, boidswarm.Boid{ID: i, Pos: rec.Pos, Vel: rec.Vel})
	}

	return nil
}

// Close releases the HDF5 handles held by the loader.
func (l *Loader) Close() (err error) {
	checkClose(&err, l.mspace)
	checkClose(&err, l.fspace)
	checkClose(&err, l.dset)
	checkClose(&err, l.file)
	return err
}
