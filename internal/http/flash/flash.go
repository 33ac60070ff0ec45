// Package flash signs small cookie values: one-shot flash messages and the
// session id.
package flash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/penababayev/zakaz-zenan-zahmeti/pkg/view"
)

var ErrInvalid = errors.New("invalid signed cookie")

const maxAge = 2 * time.Minute

type Codec struct {
	Secret     []byte
	CookieName string
	Secure     bool
}

func NewCodec(secret []byte, cookieName string, secure bool) *Codec {
	return &Codec{Secret: secret, CookieName: cookieName, Secure: secure}
}

// Encode returns base64(json).base64(hmac).
func (c *Codec) Encode(f view.Flash) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return c.Sign(base64.RawURLEncoding.EncodeToString(b)), nil
}

func (c *Codec) Decode(v string) (*view.Flash, error) {
	payload, ok := c.Verify(v)
	if !ok {
		return nil, ErrInvalid
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalid
	}
	var f view.Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, ErrInvalid
	}
	if strings.TrimSpace(f.Message) == "" {
		return nil, ErrInvalid
	}
	return &f, nil
}

// CookieMaxAge is short: the flash only has to survive one redirect.
func (c *Codec) CookieMaxAge() int {
	return int(maxAge.Seconds())
}

// Sign appends an HMAC to value. value must not contain ".".
func (c *Codec) Sign(value string) string {
	return value + "." + sign(c.Secret, value)
}

// Verify returns the value of a Sign result if the signature matches.
func (c *Codec) Verify(signed string) (string, bool) {
	value, sig, ok := strings.Cut(signed, ".")
	if !ok || strings.Contains(sig, ".") {
		return "", false
	}
	if !hmac.Equal([]byte(sign(c.Secret, value)), []byte(sig)) {
		return "", false
	}
	return value, true
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
