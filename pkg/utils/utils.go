package utils

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrEmptyImage = errors.New("uploaded file is empty")

// MaxImagePixels bounds the decoded size of an upload. Larger images are
// rejected from their header, before any pixel buffer is allocated.
const MaxImagePixels = 2 * 89478485

// ImageTooLargeError is returned when an image header declares more than
// MaxImagePixels pixels.
type ImageTooLargeError struct {
	Width  int
	Height int
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image size (%d pixels) exceeds limit of %d pixels", int64(e.Width)*int64(e.Height), MaxImagePixels)
}

// DecodeError carries the sniffed content type of an upload that could not
// be decoded.
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s (content type: %s)", e.Err.Error(), e.ContentType)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	DecodeImage(data []byte) (image.Image, string, error)
	DetectMIME(data []byte) string
}

type utils struct{}

func New() IUtils {
	return &utils{}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// DecodeImage decodes any format registered with the image package:
// JPEG, PNG, GIF, BMP, TIFF and WebP. The header is checked against
// MaxImagePixels first. Failures other than an empty upload are returned
// as *DecodeError.
func (u *utils) DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", u.decodeError(data, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, "", u.decodeError(data, &ImageTooLargeError{Width: cfg.Width, Height: cfg.Height})
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", u.decodeError(data, err)
	}

	return img, format, nil
}

func (u *utils) decodeError(data []byte, err error) error {
	return &DecodeError{ContentType: u.DetectMIME(data), Err: err}
}

func (u *utils) DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}
