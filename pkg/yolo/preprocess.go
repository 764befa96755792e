package yolo

import (
	"errors"
	"image"
	"image/color"
	"math"

	"CabbageAI/internal/entity"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

var ErrEmptyImage = errors.New("image has no pixels")

var padColor = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

// letterbox records how a source image was placed on the square model input.
type letterbox struct {
	scale  float32
	padX   int
	padY   int
	width  int
	height int
}

// preprocess resizes img to fit a size x size canvas keeping its aspect
// ratio, pads the rest with gray and returns the canvas as normalized CHW RGB.
func preprocess(img image.Image, size int) ([]float32, letterbox, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, letterbox{}, ErrEmptyImage
	}

	scale := math.Min(float64(size)/float64(width), float64(size)/float64(height))
	newWidth := clampDim(int(math.Round(float64(width)*scale)), size)
	newHeight := clampDim(int(math.Round(float64(height)*scale)), size)

	padX := (size - newWidth) / 2
	padY := (size - newHeight) / 2

	resized := resizeBilinear(img, newWidth, newHeight)
	canvas := imaging.New(size, size, padColor)
	canvas = imaging.Paste(canvas, resized, image.Pt(padX, padY))

	area := size * size
	tensor := make([]float32, 3*area)
	for y := 0; y < size; y++ {
		row := canvas.Pix[y*canvas.Stride:]
		for x := 0; x < size; x++ {
			px := row[x*4:]
			idx := y*size + x
			tensor[idx] = float32(px[0]) / 255.0
			tensor[area+idx] = float32(px[1]) / 255.0
			tensor[2*area+idx] = float32(px[2]) / 255.0
		}
	}

	return tensor, letterbox{
		scale:  float32(scale),
		padX:   padX,
		padY:   padY,
		width:  width,
		height: height,
	}, nil
}

func clampDim(v, size int) int {
	if v < 1 {
		return 1
	}
	if v > size {
		return size
	}
	return v
}

// restore maps a box from model-input pixels back onto the source image.
func (l letterbox) restore(b entity.BoundingBox) entity.BoundingBox {
	return entity.BoundingBox{
		X1: clip((b.X1-float32(l.padX))/l.scale, float32(l.width)),
		Y1: clip((b.Y1-float32(l.padY))/l.scale, float32(l.height)),
		X2: clip((b.X2-float32(l.padX))/l.scale, float32(l.width)),
		Y2: clip((b.Y2-float32(l.padY))/l.scale, float32(l.height)),
	}
}

func clip(v, limit float32) float32 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// resizeBilinear samples the two nearest source pixels per axis at
// half-pixel centers, the way cv2.INTER_LINEAR does, whatever the scale.
func resizeBilinear(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
