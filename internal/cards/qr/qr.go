package qr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder turns content into a square module matrix; true is a dark module.
// The matrix carries no quiet zone.
type Encoder interface {
	Encode(content string) ([][]bool, error)
}

// Level is the error-correction level.
type Level int

const (
	Low Level = iota
	Medium
	High
	Highest
)

// skip2Encoder is backed by github.com/skip2/go-qrcode.
type skip2Encoder struct {
	level qrcode.RecoveryLevel
}

// New returns the default encoder at the given recovery level.
func New(level Level) Encoder {
	var recovery qrcode.RecoveryLevel
	switch level {
	case Low:
		recovery = qrcode.Low
	case High:
		recovery = qrcode.High
	case Highest:
		recovery = qrcode.Highest
	default:
		recovery = qrcode.Medium
	}
	return skip2Encoder{level: recovery}
}

func (e skip2Encoder) Encode(content string) ([][]bool, error) {
	if content == "" {
		return nil, errors.New("qr content must not be empty")
	}
	code, err := qrcode.New(content, e.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code.DisableBorder = true
	return code.Bitmap(), nil
}
