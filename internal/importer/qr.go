package importer

import (
	"fmt"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/skip2/go-qrcode"
)

// minModuleMM is the smallest QR module that still scans reliably in print.
const minModuleMM = 0.4

// QRLevel is the error correction used for every QR item.
const QRLevel = qrcode.Medium

// NewQRItem builds a square QR item encoding payload. The side is raised
// to the smallest size that keeps modules printable.
func NewQRItem(payload string, size float64) (*model.Item, error) {
	if payload == "" {
		return nil, fmt.Errorf("QR code has no content")
	}
	q, err := qrcode.New(payload, QRLevel)
	if err != nil {
		return nil, fmt.Errorf("cannot encode QR code: %w", err)
	}

	if min := float64(len(q.Bitmap())) * minModuleMM; size < min {
		size = min
	}
	it := model.NewItem(model.KindQRCode, textLabel(payload), size, size)
	it.Source = payload
	return it, nil
}

// QRPNG renders payload as a PNG of px by px pixels.
func QRPNG(payload string, px int) ([]byte, error) {
	data, err := qrcode.Encode(payload, QRLevel, px)
	if err != nil {
		return nil, fmt.Errorf("cannot encode QR code: %w", err)
	}
	return data, nil
}
