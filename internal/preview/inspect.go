package preview

import (
	"bytes"
	"encoding/base64"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// ImageInfo holds what Inspect learns about an image.
type ImageInfo struct {
	Width       int
	Height      int
	Orientation int // EXIF orientation, 1 when absent
}

// Inspect decodes image dimensions and EXIF orientation. Dimensions are
// reported as displayed, i.e. swapped for orientations 5 through 8.
func Inspect(data []byte) (ImageInfo, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{Orientation: 1}, err
	}

	info := ImageInfo{Width: cfg.Width, Height: cfg.Height, Orientation: orientation(data)}
	if info.Orientation >= 5 {
		info.Width, info.Height = info.Height, info.Width
	}
	return info, nil
}

func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		// No EXIF data is not an error
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// DataURL encodes data as a base64 data URL.
func DataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// imagePreview builds the preview for an image file. Rotated or
// mirrored photos are re-encoded upright; everything else, including
// images that fail to decode, is shown from the original bytes.
func imagePreview(f File) Preview {
	p := Preview{Kind: KindImage, Name: f.Name, Source: DataURL(f.Type, f.Data)}

	info, err := Inspect(f.Data)
	if err != nil {
		return p
	}
	p.Width, p.Height = info.Width, info.Height

	if info.Orientation != 1 {
		if upright, err := reorient(f.Data, info.Orientation); err == nil {
			p.Source = DataURL("image/jpeg", upright)
		}
	}
	return p
}

func reorient(data []byte, orientation int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	img = applyOrientation(img, orientation)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// applyOrientation transforms an image according to EXIF orientation value.
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
	default:
		return img
	}
}
