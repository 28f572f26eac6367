package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// QRService renders checkout links as scannable PNGs so a purchase started
// on desktop can be paid on a phone.
type QRService struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewQRService() *QRService {
	return &QRService{size: 256, level: qrcode.Medium}
}

// EncodePNG returns content as a base64 PNG QR code.
func (s *QRService) EncodePNG(content string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("qr content is empty")
	}

	qr, err := qrcode.New(content, s.level)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(s.size)); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
