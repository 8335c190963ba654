package visitors

import (
	"net/url"
	"strings"
	"unicode"

	"expo-portal/internal/models"
)

// CardURL is the public address of a visitor's card, also the QR payload.
func CardURL(origin, id string) string {
	return strings.TrimRight(origin, "/") + "/visitor/" + url.PathEscape(id) + "/card"
}

// Initials takes the first letter of the first two words, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r := []rune(word)[0]
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// VisitorCode is the printed badge code, e.g. VIS-000015.
func VisitorCode(id string) string {
	return "VIS-" + padLeft(id, 6)
}

// CardID is the ten-digit id in the card footer.
func CardID(id string) string {
	return padLeft(id, 10)
}

const registeredLayout = "January 2, 2006 at 03:04 PM"

// Card is the view model of a visitor card.
type Card struct {
	Visitor    models.Visitor
	Initials   string
	Code       string
	CardID     string
	Registered string
	CardURL    string
	// QRImage is an image URL: the stored qr_code_url, or a data URL of the
	// card URL.
	QRImage string
	QRPath  string
	PDFPath string
}

// NewCard builds the card for v. qrDataURL is used only when the visitor
// has no stored QR image.
func NewCard(v models.Visitor, origin, qrDataURL string) Card {
	id := v.ID.String()
	c := Card{
		Visitor:  v,
		Initials: Initials(v.VisitorName),
		Code:     VisitorCode(id),
		CardID:   CardID(id),
		CardURL:  CardURL(origin, id),
		QRImage:  v.QRCodeURL,
		QRPath:   "/visitor/" + url.PathEscape(id) + "/card/qr.png",
		PDFPath:  "/visitor/" + url.PathEscape(id) + "/card.pdf",
	}
	if !v.CreatedAt.IsZero() {
		c.Registered = v.CreatedAt.Format(registeredLayout)
	}
	if c.QRImage == "" {
		c.QRImage = qrDataURL
	}
	return c
}
