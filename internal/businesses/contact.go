package businesses

import (
	"net/url"
	"strings"
)

// DefaultCountryCode is prefixed to WhatsApp numbers stored without one.
const DefaultCountryCode = "592"

// WhatsAppLink builds the deep link that opens a chat with phone,
// optionally prefilled with message.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if !strings.HasPrefix(digits, DefaultCountryCode) {
		digits = DefaultCountryCode + digits
	}

	link := "whatsapp://send?phone=" + digits
	if message != "" {
		link += "&text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link
}

// WhatsAppLink returns the chat link for the business.
func (b Business) WhatsAppLink(message string) string {
	return WhatsAppLink(b.WhatsApp, message)
}
