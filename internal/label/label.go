package label

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Геометрия этикетки на листе A4 (в пунктах).
const (
	pageWidth  = 595.28
	pageHeight = 841.89

	boxX      = 10
	boxY      = 10
	boxWidth  = 300
	boxHeight = 150

	qrSize = 100
)

// Data — содержимое этикетки. Identifier кодируется в QR и считывается
// мобильным сканером.
type Data struct {
	ID      string
	Name    string
	Address string
}

// Generate отрисовывает печатную этикетку: рамка, QR-код с идентификатором
// посылки и имя/адрес получателя рядом. Возвращает готовый PDF.
func Generate(d Data) ([]byte, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("label: empty order id")
	}

	png, err := qrcode.Encode(d.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("label: failed to encode qr: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.AddPage()

	pdf.SetLineWidth(2)
	pdf.Rect(boxX, boxY, boxWidth, boxHeight, "D")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", boxX+10, boxY+25, qrSize, qrSize, false, opts, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(boxX+120, boxY+50, d.Name)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(boxX+120, boxY+70, d.Address)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("label: failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
