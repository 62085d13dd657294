package utils

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const tableQRSize = 300

// QRCodeDataURL renders content as a PNG QR code and returns it as a data URL.
func QRCodeDataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, tableQRSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// TableOrderURL is the link encoded in a table's QR code.
func TableOrderURL(baseURL string, tableNumber int) string {
	return fmt.Sprintf("%s/pedido?mesa=%d", baseURL, tableNumber)
}
