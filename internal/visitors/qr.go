package visitors

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 300
	pngDataPrefix = "data:image/png;base64,"
)

type QRGenerator struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewQRGenerator encodes 300px PNGs at medium error recovery.
func NewQRGenerator() *QRGenerator {
	return &QRGenerator{size: DefaultQRSize, level: qrcode.Medium}
}

func (q *QRGenerator) PNG(content string) ([]byte, error) {
	return qrcode.Encode(content, q.level, q.size)
}

// Base64 returns the PNG as plain base64, the form the API stores.
func (q *QRGenerator) Base64(content string) (string, error) {
	png, err := q.PNG(content)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// DataURL wraps the PNG for an <img> src.
func (q *QRGenerator) DataURL(content string) (string, error) {
	b64, err := q.Base64(content)
	if err != nil {
		return "", err
	}
	return pngDataPrefix + b64, nil
}
