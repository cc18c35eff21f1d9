// Package raster handles cropped and whole-volume label rasters.  A raster is
// a 3d array of uint64 region labels indexed [z][y][x], positioned within the
// global voxel coordinate system by its extent.
package raster

import (
	"fmt"

	"github.com/RENCI/ninjato/ninjato"
)

// Volume is a labeled voxel raster occupying the given extent.
type Volume struct {
	Extent ninjato.Extent3d

	// Labels holds one region label per voxel in [z][y][x] order.
	Labels []uint64
}

// New returns a zero-filled volume spanning the given extent.
func New(ext ninjato.Extent3d) *Volume {
	return &Volume{
		Extent: ext,
		Labels: make([]uint64, ext.NumVoxels()),
	}
}

func (v *Volume) index(x, y, z int32) int64 {
	dx := int64(x - v.Extent.MinX)
	dy := int64(y - v.Extent.MinY)
	dz := int64(z - v.Extent.MinZ)
	return (dz*int64(v.Extent.Height())+dy)*int64(v.Extent.Width()) + dx
}

// At returns the label at global voxel coordinate (x, y, z).
func (v *Volume) At(x, y, z int32) uint64 {
	return v.Labels[v.index(x, y, z)]
}

// Set writes the label at global voxel coordinate (x, y, z).
func (v *Volume) Set(x, y, z int32, label uint64) {
	v.Labels[v.index(x, y, z)] = label
}

// Extract copies the window of v covered by ext into a new volume.  Requested
// z-slices outside v are skipped, so the returned volume's z span is the
// intersection of the request and v.  The x/y window must lie within v.
func (v *Volume) Extract(ext ninjato.Extent3d) (*Volume, error) {
	if ext.MinX < v.Extent.MinX || ext.MaxX > v.Extent.MaxX ||
		ext.MinY < v.Extent.MinY || ext.MaxY > v.Extent.MaxY {
		return nil, fmt.Errorf("extract window %s exceeds raster xy bounds %s", ext, v.Extent)
	}
	zMin := ext.MinZ
	zMax := ext.MaxZ
	if zMin < v.Extent.MinZ {
		zMin = v.Extent.MinZ
	}
	if zMax > v.Extent.MaxZ {
		zMax = v.Extent.MaxZ
	}
	if zMin > zMax {
		return nil, fmt.Errorf("extract window %s shares no z-slices with raster %s", ext, v.Extent)
	}
	out := New(ninjato.Extent3d{
		MinX: ext.MinX, MaxX: ext.MaxX,
		MinY: ext.MinY, MaxY: ext.MaxY,
		MinZ: zMin, MaxZ: zMax,
	})
	width := int64(out.Extent.Width())
	for z := zMin; z <= zMax; z++ {
		for y := ext.MinY; y <= ext.MaxY; y++ {
			src := v.index(ext.MinX, y, z)
			dst := out.index(ext.MinX, y, z)
			copy(out.Labels[dst:dst+width], v.Labels[src:src+width])
		}
	}
	return out, nil
}

// MergeBack writes the edited raster's voxels into the corresponding window
// of v, leaving everything outside the window untouched.  The write is
// all-or-nothing: it goes to a scratch copy that replaces v's labels only
// after every slice has been copied.
func (v *Volume) MergeBack(edited *Volume) error {
	if !v.Extent.Contains(edited.Extent) {
		return fmt.Errorf("edited raster %s not contained in whole raster %s", edited.Extent, v.Extent)
	}
	scratch := make([]uint64, len(v.Labels))
	copy(scratch, v.Labels)

	width := int64(edited.Extent.Width())
	for z := edited.Extent.MinZ; z <= edited.Extent.MaxZ; z++ {
		for y := edited.Extent.MinY; y <= edited.Extent.MaxY; y++ {
			src := edited.index(edited.Extent.MinX, y, z)
			dst := v.index(edited.Extent.MinX, y, z)
			copy(scratch[dst:dst+width], edited.Labels[src:src+width])
		}
	}
	v.Labels = scratch
	return nil
}

// RegionExtent returns the tight extent of all voxels carrying the given
// label, and false if the label does not occur in the raster.
func (v *Volume) RegionExtent(label uint64) (ninjato.Extent3d, bool) {
	var ext ninjato.Extent3d
	found := false
	i := 0
	for z := v.Extent.MinZ; z <= v.Extent.MaxZ; z++ {
		for y := v.Extent.MinY; y <= v.Extent.MaxY; y++ {
			for x := v.Extent.MinX; x <= v.Extent.MaxX; x++ {
				if v.Labels[i] == label {
					if !found {
						ext = ninjato.Extent3d{MinX: x, MaxX: x, MinY: y, MaxY: y, MinZ: z, MaxZ: z}
						found = true
					} else {
						if x < ext.MinX {
							ext.MinX = x
						}
						if x > ext.MaxX {
							ext.MaxX = x
						}
						if y < ext.MinY {
							ext.MinY = y
						}
						if y > ext.MaxY {
							ext.MaxY = y
						}
						if z > ext.MaxZ {
							ext.MaxZ = z
						}
					}
				}
				i++
			}
		}
	}
	return ext, found
}

// LabelSet returns the set of nonzero labels present in the raster.
func (v *Volume) LabelSet() map[uint64]struct{} {
	labels := make(map[uint64]struct{})
	for _, label := range v.Labels {
		if label != 0 {
			labels[label] = struct{}{}
		}
	}
	return labels
}

// Equal returns true if both rasters cover the same extent with identical labels.
func (v *Volume) Equal(v2 *Volume) bool {
	if v.Extent != v2.Extent || len(v.Labels) != len(v2.Labels) {
		return false
	}
	for i, label := range v.Labels {
		if v2.Labels[i] != label {
			return false
		}
	}
	return true
}
