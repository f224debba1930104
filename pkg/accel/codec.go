package accel

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/df07/go-raytracer-bvh/pkg/core"
)

const (
	nodesFile = "nodes.bin"
	orderFile = "order.bin"
	statsFile = "stats.bin"
)

// Encode writes the node store, the primitive order and the build stats
// as gob streams inside a zip archive. Primitives themselves are not
// written; they are supplied again on Decode.
func (bvh *BVH) Encode(w io.Writer) error {
	zw := zip.NewWriter(w)

	entries := []struct {
		name  string
		value interface{}
	}{
		{nodesFile, bvh.nodes},
		{orderFile, bvh.order},
		{statsFile, bvh.stats},
	}
	for _, entry := range entries {
		cw, err := zw.Create(entry.name)
		if err != nil {
			return errors.Wrapf(err, "creating %s", entry.name)
		}
		if err := gob.NewEncoder(cw).Encode(entry.value); err != nil {
			return errors.Wrapf(err, "encoding %s", entry.name)
		}
	}

	return errors.Wrap(zw.Close(), "closing archive")
}

// Save writes the hierarchy to a file
func (bvh *BVH) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := bvh.Encode(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// Decode reads a hierarchy written by Encode. prims must be the same
// primitives, in the same order, that were passed to Build; like Build,
// Decode reorders the slice in place and keeps it, but only once the
// decoded store has passed Validate.
func Decode(r io.ReaderAt, size int64, prims []core.Primitive) (*BVH, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "opening archive")
	}

	bvh := &BVH{}
	found := 0
	for _, f := range zr.File {
		var target interface{}
		switch f.Name {
		case nodesFile:
			target = &bvh.nodes
		case orderFile:
			target = &bvh.order
		case statsFile:
			target = &bvh.stats
		default:
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", f.Name)
		}
		err = gob.NewDecoder(rc).Decode(target)
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s", f.Name)
		}
		found++
	}
	if found != 3 {
		return nil, errors.Errorf("archive is missing entries: found %d of 3", found)
	}

	// gob leaves empty slices nil
	if bvh.order == nil {
		bvh.order = []int{}
	}
	if len(bvh.order) != len(prims) {
		return nil, errors.Errorf("archive holds %d primitives, %d supplied", len(bvh.order), len(prims))
	}

	reordered := make([]core.Primitive, len(prims))
	for i, src := range bvh.order {
		if src < 0 || src >= len(prims) {
			return nil, errors.Errorf("order[%d] = %d out of range", i, src)
		}
		reordered[i] = prims[src]
	}
	bvh.prims = reordered
	if err := bvh.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid node store")
	}

	copy(prims, reordered)
	bvh.prims = prims
	return bvh, nil
}

// Load reads a hierarchy saved with Save
func Load(path string, prims []core.Primitive) (*BVH, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	bvh, err := Decode(bytes.NewReader(data), int64(len(data)), prims)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return bvh, nil
}
