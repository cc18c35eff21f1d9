package raster

import (
	"encoding/binary"
	"fmt"

	"github.com/RENCI/ninjato/ninjato"
)

// Codec converts between raster volumes and stored blob bytes.  The
// production deployment plugs in a multi-slice TIFF codec; this package only
// depends on the interface.
type Codec interface {
	// Decode materializes a volume from blob bytes.
	Decode(blob []byte) (*Volume, error)

	// Encode serializes a volume to blob bytes.
	Encode(v *Volume) ([]byte, error)
}

// RawCodec is a little-endian binary codec: a fixed header with the extent
// followed by one uint64 per voxel in [z][y][x] order.  Used by tests and as
// a development stand-in for the TIFF codec.
type RawCodec struct{}

const rawCodecMagic = "NJRV"

func (RawCodec) Encode(v *Volume) ([]byte, error) {
	blob := make([]byte, 4+6*4+8*len(v.Labels))
	copy(blob[:4], rawCodecMagic)
	off := 4
	for _, bound := range []int32{
		v.Extent.MinX, v.Extent.MaxX,
		v.Extent.MinY, v.Extent.MaxY,
		v.Extent.MinZ, v.Extent.MaxZ,
	} {
		binary.LittleEndian.PutUint32(blob[off:], uint32(bound))
		off += 4
	}
	for _, label := range v.Labels {
		binary.LittleEndian.PutUint64(blob[off:], label)
		off += 8
	}
	return blob, nil
}

func (RawCodec) Decode(blob []byte) (*Volume, error) {
	if len(blob) < 4+6*4 || string(blob[:4]) != rawCodecMagic {
		return nil, fmt.Errorf("blob is not a raw raster volume")
	}
	off := 4
	bounds := make([]int32, 6)
	for i := range bounds {
		bounds[i] = int32(binary.LittleEndian.Uint32(blob[off:]))
		off += 4
	}
	ext := ninjato.Extent3d{
		MinX: bounds[0], MaxX: bounds[1],
		MinY: bounds[2], MaxY: bounds[3],
		MinZ: bounds[4], MaxZ: bounds[5],
	}
	if !ext.Valid() {
		return nil, fmt.Errorf("blob has inverted extent %s", ext)
	}
	numVoxels := ext.NumVoxels()
	if int64(len(blob)-off) != 8*numVoxels {
		return nil, fmt.Errorf("blob has %d label bytes, extent %s needs %d voxels",
			len(blob)-off, ext, numVoxels)
	}
	v := New(ext)
	for i := range v.Labels {
		v.Labels[i] = binary.LittleEndian.Uint64(blob[off:])
		off += 8
	}
	return v, nil
}
