package visitors

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/signintech/gopdf"
)

var ErrNoFont = errors.New("no font configured for PDF cards")

// cardPageSize is A6 in points.
var cardPageSize = gopdf.Rect{W: 297.64, H: 419.53}

// CardPDFGenerator renders a printable A6 visitor card.
type CardPDFGenerator struct {
	fontPath string
	event    string
}

func NewCardPDFGenerator(fontPath, eventName string) *CardPDFGenerator {
	return &CardPDFGenerator{fontPath: fontPath, event: eventName}
}

func (g *CardPDFGenerator) Generate(card Card, qrCode []byte) ([]byte, error) {
	if g.fontPath == "" {
		return nil, ErrNoFont
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: cardPageSize})
	pdf.AddPage()

	if err := pdf.AddTTFFont("card", g.fontPath); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	if err := pdf.SetFont("card", "", 16); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}

	g.addHeader(pdf, card)

	pdf.SetFontSize(10)
	pdf.SetXY(20, 90)
	addVisitorInfo(pdf, card)

	if len(qrCode) > 0 {
		addQRCode(pdf, qrCode)
	}

	pdf.SetFontSize(7)
	pdf.SetXY(20, 395)
	pdf.Cell(nil, "Card ID: "+card.CardID)

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *CardPDFGenerator) addHeader(pdf *gopdf.GoPdf, card Card) {
	pdf.SetXY(20, 25)
	pdf.Cell(nil, g.event+" VISITOR PASS")

	pdf.SetFontSize(12)
	pdf.SetXY(20, 50)
	pdf.Cell(nil, card.Initials+"  "+card.Visitor.VisitorName)
	pdf.SetXY(20, 68)
	pdf.Cell(nil, "Visitor ID: "+card.Code)
}

func addVisitorInfo(pdf *gopdf.GoPdf, card Card) {
	v := card.Visitor
	info := []struct {
		Label string
		Value string
	}{
		{"Business", v.BusinessName},
		{"Email", v.Email},
		{"Mobile", v.Mobile},
		{"City", v.City},
		{"Registered", card.Registered},
	}

	for _, item := range info {
		if item.Value == "" {
			continue
		}
		pdf.SetX(20)
		pdf.Cell(nil, item.Label+": "+item.Value)
		pdf.Br(14)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		pdf.Cell(nil, "Failed to load QR code")
		return
	}

	rect := &gopdf.Rect{W: 150, H: 150}
	if err := pdf.ImageFrom(img, 75, 220, rect); err != nil {
		pdf.Cell(nil, "Failed to draw QR code")
	}
}
