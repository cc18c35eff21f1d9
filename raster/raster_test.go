package raster

import (
	"testing"

	"github.com/RENCI/ninjato/ninjato"
)

// testVolume builds a 10x10x5 raster with region 7 filling x:[2,4] y:[3,5]
// z:[1,2] and region 9 filling the single voxel (8, 8, 4).
func testVolume() *Volume {
	v := New(ninjato.Extent3d{MinX: 0, MaxX: 9, MinY: 0, MaxY: 9, MinZ: 0, MaxZ: 4})
	for z := int32(1); z <= 2; z++ {
		for y := int32(3); y <= 5; y++ {
			for x := int32(2); x <= 4; x++ {
				v.Set(x, y, z, 7)
			}
		}
	}
	v.Set(8, 8, 4, 9)
	return v
}

func TestAtSet(t *testing.T) {
	v := testVolume()
	if got := v.At(3, 4, 1); got != 7 {
		t.Errorf("expected label 7 at (3, 4, 1), got %d", got)
	}
	if got := v.At(0, 0, 0); got != 0 {
		t.Errorf("expected background at (0, 0, 0), got %d", got)
	}
	v.Set(0, 0, 0, 11)
	if got := v.At(0, 0, 0); got != 11 {
		t.Errorf("expected label 11 after set, got %d", got)
	}
}

func TestLabelSet(t *testing.T) {
	v := testVolume()
	labels := v.LabelSet()
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d: %v", len(labels), labels)
	}
	for _, label := range []uint64{7, 9} {
		if _, found := labels[label]; !found {
			t.Errorf("label %d missing from label set", label)
		}
	}
}

func TestRegionExtent(t *testing.T) {
	v := testVolume()
	ext, found := v.RegionExtent(7)
	if !found {
		t.Fatalf("label 7 not found")
	}
	want := ninjato.Extent3d{MinX: 2, MaxX: 4, MinY: 3, MaxY: 5, MinZ: 1, MaxZ: 2}
	if ext != want {
		t.Errorf("extent of label 7: got %s, want %s", ext, want)
	}
	ext, found = v.RegionExtent(9)
	if !found {
		t.Fatalf("label 9 not found")
	}
	want = ninjato.Extent3d{MinX: 8, MaxX: 8, MinY: 8, MaxY: 8, MinZ: 4, MaxZ: 4}
	if ext != want {
		t.Errorf("extent of label 9: got %s, want %s", ext, want)
	}
	if _, found = v.RegionExtent(12345); found {
		t.Errorf("expected label 12345 to be absent")
	}
}

func TestExtract(t *testing.T) {
	v := testVolume()
	window := ninjato.Extent3d{MinX: 2, MaxX: 4, MinY: 3, MaxY: 5, MinZ: 1, MaxZ: 2}
	cropped, err := v.Extract(window)
	if err != nil {
		t.Fatalf("error extracting %s: %v", window, err)
	}
	if cropped.Extent != window {
		t.Errorf("cropped extent: got %s, want %s", cropped.Extent, window)
	}
	for z := window.MinZ; z <= window.MaxZ; z++ {
		for y := window.MinY; y <= window.MaxY; y++ {
			for x := window.MinX; x <= window.MaxX; x++ {
				if cropped.At(x, y, z) != v.At(x, y, z) {
					t.Fatalf("cropped label differs at (%d, %d, %d)", x, y, z)
				}
			}
		}
	}
}

func TestExtractClipsZ(t *testing.T) {
	v := testVolume()
	window := ninjato.Extent3d{MinX: 0, MaxX: 9, MinY: 0, MaxY: 9, MinZ: 3, MaxZ: 40}
	cropped, err := v.Extract(window)
	if err != nil {
		t.Fatalf("error extracting %s: %v", window, err)
	}
	if cropped.Extent.MinZ != 3 || cropped.Extent.MaxZ != 4 {
		t.Errorf("z not clipped to raster: got [%d,%d], want [3,4]",
			cropped.Extent.MinZ, cropped.Extent.MaxZ)
	}
	if cropped.At(8, 8, 4) != 9 {
		t.Errorf("expected label 9 at (8, 8, 4) in clipped extraction")
	}
}

func TestExtractBounds(t *testing.T) {
	v := testVolume()
	if _, err := v.Extract(ninjato.Extent3d{MinX: -1, MaxX: 5, MinY: 0, MaxY: 5, MinZ: 0, MaxZ: 1}); err == nil {
		t.Errorf("expected error extracting past x bounds")
	}
	if _, err := v.Extract(ninjato.Extent3d{MinX: 0, MaxX: 5, MinY: 0, MaxY: 5, MinZ: 10, MaxZ: 12}); err == nil {
		t.Errorf("expected error when no z-slices are shared")
	}
}

func TestMergeBack(t *testing.T) {
	v := testVolume()
	window := ninjato.Extent3d{MinX: 2, MaxX: 4, MinY: 3, MaxY: 5, MinZ: 1, MaxZ: 2}
	edited, err := v.Extract(window)
	if err != nil {
		t.Fatalf("error extracting: %v", err)
	}

	// Unchanged merge-back is the identity.
	merged := testVolume()
	if err := merged.MergeBack(edited); err != nil {
		t.Fatalf("error merging back: %v", err)
	}
	if !merged.Equal(v) {
		t.Errorf("unchanged merge-back altered raster")
	}

	// Relabel one voxel and merge; only that voxel changes.
	edited.Set(3, 4, 1, 21)
	if err := merged.MergeBack(edited); err != nil {
		t.Fatalf("error merging back edit: %v", err)
	}
	if merged.At(3, 4, 1) != 21 {
		t.Errorf("expected edit at (3, 4, 1) to land, got %d", merged.At(3, 4, 1))
	}
	if merged.At(8, 8, 4) != 9 {
		t.Errorf("voxel outside edit window changed")
	}

	// An edited raster wider than the whole volume is refused whole.
	before := merged.Labels[0]
	bad := New(ninjato.Extent3d{MinX: 0, MaxX: 20, MinY: 0, MaxY: 9, MinZ: 0, MaxZ: 4})
	if err := merged.MergeBack(bad); err == nil {
		t.Errorf("expected error merging uncontained raster")
	}
	if merged.Labels[0] != before {
		t.Errorf("failed merge must leave raster untouched")
	}
}
