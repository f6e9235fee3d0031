package services

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRService renders QR codes as PNG
type QRService struct {
	level qrcode.RecoveryLevel
}

// NewQRService creates a QR renderer with medium error correction
func NewQRService() *QRService {
	return &QRService{level: qrcode.Medium}
}

// Encode renders content as a size x size PNG
func (q *QRService) Encode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, errors.New("QR content is empty")
	}
	if size <= 0 {
		size = 256
	}

	png, err := qrcode.Encode(content, q.level, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
