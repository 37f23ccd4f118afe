package loaders

import (
	"fmt"
	"image"
	"os"

	// decoders registered with image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"golang.org/x/image/draw"
)

/** @brief Parameters for LoadImage. */
type ImageParams struct {
	/** @brief Flip rows so the first row is the bottom of the image, as GL expects. */
	FlipY bool
}

/** @brief Decoded pixels in RGBA8, tightly packed. */
type ImageData struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

// LoadImage decodes any registered format into RGBA8.
func LoadImage(path string, params *ImageParams) (*ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("func LoadImage - %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("func LoadImage - decoding %s: %w", path, err)
	}
	b := img.Bounds()
	data := &ImageData{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Pixels: ImageToRGBA8(img),
	}
	if params != nil && params.FlipY {
		FlipRows(data.Pixels, b.Dx()*4)
	}
	return data, nil
}

// ImageToRGBA8 converts img into tightly packed, non premultiplied RGBA8 rows.
func ImageToRGBA8(img image.Image) []byte {
	b := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == b.Dx()*4 && nrgba.Rect.Min == (image.Point{}) {
		return append([]byte(nil), nrgba.Pix...)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst.Pix
}

// ImageToRGB565 packs img into little endian RGB565 words.
func ImageToRGB565(img image.Image) []byte {
	rgba := ImageToRGBA8(img)
	out := make([]byte, len(rgba)/2)
	for i, j := 0, 0; i < len(rgba); i, j = i+4, j+2 {
		r, g, b := uint16(rgba[i]), uint16(rgba[i+1]), uint16(rgba[i+2])
		v := (r>>3)<<11 | (g>>2)<<5 | b>>3
		out[j] = byte(v)
		out[j+1] = byte(v >> 8)
	}
	return out
}

// Resize scales img to w x h with Catmull-Rom filtering.
func Resize(img image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// FlipRows reverses the row order of pixels in place.
func FlipRows(pixels []byte, stride int) {
	rows := len(pixels) / stride
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := pixels[top*stride : (top+1)*stride]
		b := pixels[bottom*stride : (bottom+1)*stride]
		copy(tmp, t)
		copy(t, b)
		copy(b, tmp)
	}
}
