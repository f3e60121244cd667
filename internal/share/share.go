// Package share builds outbound share links. Only text leaves the booth:
// photos are never attached.
package share

import "net/url"

const whatsAppBase = "https://wa.me/?text="

// WhatsAppURL returns a WhatsApp share link carrying caption and pageURL.
func WhatsAppURL(caption, pageURL string) string {
	text := caption
	if pageURL != "" {
		if text != "" {
			text += " "
		}
		text += pageURL
	}
	return whatsAppBase + url.QueryEscape(text)
}
