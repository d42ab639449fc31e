package marketing

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// campaignBody greets the owner by name and renders each paragraph of body,
// followed by the booking link and its QR image when bookingURL is set.
func campaignBody(ownerName, body, bookingURL, qrDataURI string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		greeting := "Hi there,"
		if name := strings.TrimSpace(ownerName); name != "" {
			greeting = "Hi " + name + ","
		}

		var sb strings.Builder
		sb.WriteString("<p>" + templ.EscapeString(greeting) + "</p>")
		for _, para := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				sb.WriteString("<p>" + templ.EscapeString(para) + "</p>")
			}
		}
		if bookingURL != "" {
			sb.WriteString(`<p><a href="` + templ.EscapeString(string(templ.URL(bookingURL))) + `">Book a visit</a></p>`)
		}
		if qrDataURI != "" {
			sb.WriteString(`<p><img src="` + templ.EscapeString(qrDataURI) + `" alt="Booking QR code" width="160" height="160"></p>`)
		}
		_, err := io.WriteString(w, sb.String())
		return err
	})
}
