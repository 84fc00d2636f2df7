// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quote

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// MaxImageDimension is the longest side a photographed quote is sent with.
// Larger photos are downscaled; extraction gains nothing from the extra
// pixels and the upload gets much slower.
const MaxImageDimension = 2400

// Prepared is a document ready to be sent for extraction.
type Prepared struct {
	Data        []byte
	ContentType string
	Changed     bool
}

// Reader returns the prepared bytes as a reader.
func (p Prepared) Reader() io.Reader { return bytes.NewReader(p.Data) }

// PrepareDocument applies the EXIF orientation of JPEG photos and fits
// images within MaxImageDimension. PDFs and images that need no change are
// returned as they are.
func PrepareDocument(data []byte, contentType string) (Prepared, error) {
	out := Prepared{Data: data, ContentType: contentType}

	var format string
	switch contentType {
	case "image/jpeg", "image/jpg":
		format = "jpeg"
	case "image/png":
		format = "png"
	default:
		return out, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return out, fmt.Errorf("decoding image: %w", err)
	}

	changed := false
	if format == "jpeg" {
		if o := readExifOrientation(bytes.NewReader(data)); o > 1 {
			img = applyOrientation(img, o)
			changed = true
		}
	}

	b := img.Bounds()
	if b.Dx() > MaxImageDimension || b.Dy() > MaxImageDimension {
		img = imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos)
		changed = true
	}
	if !changed {
		return out, nil
	}

	encoded, err := encodeImage(img, format)
	if err != nil {
		return out, fmt.Errorf("encoding image: %w", err)
	}
	out.Data = encoded
	out.Changed = true
	if format == "jpeg" {
		out.ContentType = "image/jpeg"
	}
	return out, nil
}

// readExifOrientation returns the EXIF orientation tag, or 1 when absent.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

// applyOrientation undoes the camera rotation recorded in EXIF:
// 2 flip H, 3 rotate 180, 4 flip V, 5 transpose, 6 rotate 90 CW,
// 7 transverse, 8 rotate 90 CCW.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
