package memmgr

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// Scratch-file byte order: the format has no explicit endianness (spec §9,
// Open Question a), so this implementation fixes little-endian and documents
// it here as the single, tested choice — readers of files written by any
// other implementation must convert explicitly.
var scratchByteOrder = binary.LittleEndian

// writeScratch serializes img to path using the on-disk layout of spec
// §4.1: kind byte, int32 height, int32 width, then float32 pixels in
// row-major order (1 plane for Mono, 3 interleaved for RGB).
func writeScratch(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "memmgr.write", err)
	}
	defer f.Close()

	if err := writeScratchTo(f, img); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "memmgr.write", err)
	}
	return f.Sync()
}

func writeScratchTo(w io.Writer, img image.Image) error {
	if err := binary.Write(w, scratchByteOrder, byte(img.Kind())); err != nil {
		return err
	}
	if err := binary.Write(w, scratchByteOrder, int32(img.Height())); err != nil {
		return err
	}
	if err := binary.Write(w, scratchByteOrder, int32(img.Width())); err != nil {
		return err
	}

	switch v := img.(type) {
	case *image.Mono:
		for y := 0; y < v.H; y++ {
			if err := binary.Write(w, scratchByteOrder, v.Data[y]); err != nil {
				return err
			}
		}
	case *image.RGB:
		row := make([]float32, v.W*3)
		for y := 0; y < v.H; y++ {
			for x := 0; x < v.W; x++ {
				row[x*3] = v.R[y][x]
				row[x*3+1] = v.G[y][x]
				row[x*3+2] = v.B[y][x]
			}
			if err := binary.Write(w, scratchByteOrder, row); err != nil {
				return err
			}
		}
	default:
		return apperrors.ErrUnsupportedKind
	}
	return nil
}

// readScratch deserializes an image previously written by writeScratch.
func readScratch(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "memmgr.read", err)
	}
	defer f.Close()

	img, err := readScratchFrom(f)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "memmgr.read", err)
	}
	return img, nil
}

func readScratchFrom(r io.Reader) (image.Image, error) {
	var kind byte
	var h, w int32
	if err := binary.Read(r, scratchByteOrder, &kind); err != nil {
		return nil, err
	}
	if err := binary.Read(r, scratchByteOrder, &h); err != nil {
		return nil, err
	}
	if err := binary.Read(r, scratchByteOrder, &w); err != nil {
		return nil, err
	}

	switch image.Kind(kind) {
	case image.KindMonoImage:
		out := image.NewMono(int(w), int(h))
		for y := 0; y < int(h); y++ {
			if err := binary.Read(r, scratchByteOrder, out.Data[y]); err != nil {
				return nil, err
			}
		}
		return out, nil
	case image.KindRGBImage:
		out := image.NewRGB(int(w), int(h))
		row := make([]float32, int(w)*3)
		for y := 0; y < int(h); y++ {
			if err := binary.Read(r, scratchByteOrder, row); err != nil {
				return nil, err
			}
			for x := 0; x < int(w); x++ {
				out.R[y][x] = row[x*3]
				out.G[y][x] = row[x*3+1]
				out.B[y][x] = row[x*3+2]
			}
		}
		return out, nil
	default:
		return nil, apperrors.ErrUnsupportedKind
	}
}
