package ninjato

import (
	"fmt"
	"math"
)

// Extent3d is an axis-aligned box in voxel coordinates with inclusive bounds.
// The JSON field names match the region metadata produced at ingestion.
type Extent3d struct {
	MinX int32 `json:"x_min"`
	MaxX int32 `json:"x_max"`
	MinY int32 `json:"y_min"`
	MaxY int32 `json:"y_max"`
	MinZ int32 `json:"z_min"`
	MaxZ int32 `json:"z_max"`
}

func (e Extent3d) String() string {
	return fmt.Sprintf("x:[%d,%d] y:[%d,%d] z:[%d,%d]", e.MinX, e.MaxX, e.MinY, e.MaxY, e.MinZ, e.MaxZ)
}

// Width, Height, and Depth return the number of voxels spanned along each axis.
func (e Extent3d) Width() int32  { return e.MaxX - e.MinX + 1 }
func (e Extent3d) Height() int32 { return e.MaxY - e.MinY + 1 }
func (e Extent3d) Depth() int32  { return e.MaxZ - e.MinZ + 1 }

// NumVoxels returns the number of voxels within the extent.
func (e Extent3d) NumVoxels() int64 {
	return int64(e.Width()) * int64(e.Height()) * int64(e.Depth())
}

// Valid returns true if no axis is inverted.
func (e Extent3d) Valid() bool {
	return e.MinX <= e.MaxX && e.MinY <= e.MaxY && e.MinZ <= e.MaxZ
}

// Contains returns true if e2 lies entirely within e.
func (e Extent3d) Contains(e2 Extent3d) bool {
	return e.MinX <= e2.MinX && e2.MaxX <= e.MaxX &&
		e.MinY <= e2.MinY && e2.MaxY <= e.MaxY &&
		e.MinZ <= e2.MinZ && e2.MaxZ <= e.MaxZ
}

// ContainsPoint returns true if voxel (x, y, z) lies within e.
func (e Extent3d) ContainsPoint(x, y, z int32) bool {
	return e.MinX <= x && x <= e.MaxX &&
		e.MinY <= y && y <= e.MaxY &&
		e.MinZ <= z && z <= e.MaxZ
}

// Overlaps returns true unless the two extents are separated along some axis.
func (e Extent3d) Overlaps(e2 Extent3d) bool {
	if e.MaxX < e2.MinX || e2.MaxX < e.MinX {
		return false
	}
	if e.MaxY < e2.MinY || e2.MaxY < e.MinY {
		return false
	}
	if e.MaxZ < e2.MinZ || e2.MaxZ < e.MinZ {
		return false
	}
	return true
}

// Union returns the smallest extent containing both e and e2.
func (e Extent3d) Union(e2 Extent3d) Extent3d {
	return Extent3d{
		MinX: minInt32(e.MinX, e2.MinX), MaxX: maxInt32(e.MaxX, e2.MaxX),
		MinY: minInt32(e.MinY, e2.MinY), MaxY: maxInt32(e.MaxY, e2.MaxY),
		MinZ: minInt32(e.MinZ, e2.MinZ), MaxZ: maxInt32(e.MaxZ, e2.MaxZ),
	}
}

// BufferedExtent expands tight symmetrically so each XY axis span grows to
// factor times itself (both axes share the factor, preserving aspect) and the
// z span grows to factor times itself, then clamps against volume.  Overflow
// past a volume face is pushed to the opposite side so the buffered size is
// preserved where the volume allows.  The result always spans at least 3
// z-slices when the volume does.
func BufferedExtent(tight, volume Extent3d, factor float64) Extent3d {
	if factor < 1 {
		factor = 1
	}
	b := tight
	padX := padding(tight.MaxX-tight.MinX, factor)
	padY := padding(tight.MaxY-tight.MinY, factor)
	padZ := padding(tight.MaxZ-tight.MinZ, factor)
	b.MinX -= padX
	b.MaxX += padX
	b.MinY -= padY
	b.MaxY += padY
	b.MinZ -= padZ
	b.MaxZ += padZ

	b.MinX, b.MaxX = clampAxis(b.MinX, b.MaxX, volume.MinX, volume.MaxX)
	b.MinY, b.MaxY = clampAxis(b.MinY, b.MaxY, volume.MinY, volume.MaxY)
	b.MinZ, b.MaxZ = clampAxis(b.MinZ, b.MaxZ, volume.MinZ, volume.MaxZ)

	// Downstream review tooling needs at least 3 z-slices.
	for b.Depth() < 3 {
		grew := false
		if b.MinZ > volume.MinZ {
			b.MinZ--
			grew = true
		}
		if b.Depth() < 3 && b.MaxZ < volume.MaxZ {
			b.MaxZ++
			grew = true
		}
		if !grew {
			break
		}
	}
	return b
}

// padding returns the per-side growth that takes an axis span of extent
// (max - min) to factor times itself.
func padding(span int32, factor float64) int32 {
	return int32(math.Round(float64(span) * (factor - 1) / 2))
}

// clampAxis fits [lo, hi] into [volLo, volHi], pushing overflow on one side
// to the other before truncating.
func clampAxis(lo, hi, volLo, volHi int32) (int32, int32) {
	if lo < volLo {
		hi += volLo - lo
		lo = volLo
	}
	if hi > volHi {
		lo -= hi - volHi
		hi = volHi
	}
	if lo < volLo {
		lo = volLo
	}
	return lo, hi
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
