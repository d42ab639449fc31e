package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderSignature = "X-Furfolio-Signature"
	HeaderTimestamp = "X-Furfolio-Timestamp"
	HeaderDelivery  = "X-Furfolio-Delivery"
)

// Signature binds a payload to a timestamp and a delivery ID.
type Signature struct {
	Value     string
	Timestamp int64
	Delivery  string
}

// Apply writes the signature headers to h.
func (s Signature) Apply(h http.Header) {
	h.Set(HeaderSignature, s.Value)
	h.Set(HeaderTimestamp, strconv.FormatInt(s.Timestamp, 10))
	h.Set(HeaderDelivery, s.Delivery)
}

// Sign computes hex(HMAC-SHA256(secret, "<unix>.<payload>")).
func Sign(secret string, payload []byte, at time.Time) (Signature, error) {
	if secret == "" {
		return Signature{}, ErrMissingSecret
	}
	if len(payload) == 0 {
		return Signature{}, ErrInvalidPayload
	}
	ts := at.Unix()
	return Signature{Value: mac(secret, ts, payload), Timestamp: ts, Delivery: uuid.NewString()}, nil
}

// ParseSignature reads the signature headers from h.
func ParseSignature(h http.Header) (Signature, error) {
	sig := Signature{Value: h.Get(HeaderSignature), Delivery: h.Get(HeaderDelivery)}
	raw := h.Get(HeaderTimestamp)
	if sig.Value == "" || raw == "" {
		return Signature{}, errors.Join(ErrInvalidSignature, errors.New("missing signature headers"))
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Signature{}, errors.Join(ErrInvalidSignature, err)
	}
	sig.Timestamp = ts
	return sig, nil
}

// Verify checks sig against payload. A positive maxAge rejects signatures
// older than maxAge or more than a minute in the future.
func Verify(secret string, payload []byte, sig Signature, maxAge time.Duration) error {
	if secret == "" {
		return ErrMissingSecret
	}
	if maxAge > 0 {
		age := time.Since(time.Unix(sig.Timestamp, 0))
		if age > maxAge || age < -time.Minute {
			return errors.Join(ErrInvalidSignature, fmt.Errorf("timestamp outside window: %s", age))
		}
	}
	if !hmac.Equal([]byte(mac(secret, sig.Timestamp, payload)), []byte(sig.Value)) {
		return errors.Join(ErrInvalidSignature, errors.New("signature mismatch"))
	}
	return nil
}

func mac(secret string, ts int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", ts)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
