// Package decode extracts QR payloads from camera frames using gozxing.
package decode

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode means the frame held no readable QR code. It is the common case
// while the camera is pointed elsewhere.
var ErrNoCode = errors.New("decode: no QR code in frame")

// Decoder turns a frame into a payload.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// QR decodes QR codes. It is not safe for concurrent use; the scanner owns
// one per decode loop.
type QR struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewQR creates a decoder that trades speed for accuracy, which suits the
// low frame rate the scanner samples at.
func NewQR() *QR {
	return &QR{
		reader: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the text of the first QR code found in img.
func (q *QR) Decode(img image.Image) (string, error) {
	if img == nil {
		return "", ErrNoCode
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("decode: binarize: %w", err)
	}
	result, err := q.reader.Decode(bmp, q.hints)
	if err != nil {
		var nf gozxing.NotFoundException
		if errors.As(err, &nf) {
			return "", ErrNoCode
		}
		return "", fmt.Errorf("decode: %w", err)
	}
	return result.GetText(), nil
}
