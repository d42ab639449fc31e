// Package qrcode renders PNG QR codes for links embedded in outbound email,
// such as the booking link of a marketing campaign.
//
// Encode returns raw PNG bytes and DataURI returns a data URI for use in an
// <img> tag. Both reject empty content with ErrEmptyContent.
//
//	uri, err := qrcode.DataURI("https://furfolio.app/book/spring",
//		qrcode.WithSize(160),
//	)
//	if err != nil {
//		// handle error
//	}
package qrcode
