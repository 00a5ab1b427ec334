package renderer

import (
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// qrBadge rasterizes payload as a borderless QR code of sizePx pixels.
func qrBadge(payload string, sizePx int) (image.Image, error) {
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	qr.DisableBorder = true
	return qr.Image(sizePx), nil
}
