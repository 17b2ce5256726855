package printing

import (
	"bytes"
	"fmt"
	"image/png"
	"math/rand"
	"strconv"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// GenerateBarcodeNumber returns a fresh 12-digit internal barcode. The "10"
// prefix keeps internal codes out of the standard EAN/UPC ranges; the rest
// is the last five digits of the current millisecond clock plus a five-digit
// random suffix for collision resistance.
func GenerateBarcodeNumber() string {
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	timestamp := millis[len(millis)-5:]
	random := fmt.Sprintf("%05d", rand.Intn(100000))
	return "10" + timestamp + random
}

// RenderCode128 encodes the value as a Code 128 barcode and returns it as a
// PNG scaled to the given pixel dimensions.
func RenderCode128(value string, width, height int) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("barcode value is empty")
	}
	if width <= 0 {
		width = 200
	}
	if height <= 0 {
		height = 50
	}

	code, err := code128.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("encode code128: %w", err)
	}

	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
