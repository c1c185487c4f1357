package httpclient

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

// DefaultSignatureHeader carries the request signature.
const DefaultSignatureHeader = "X-Signature"

// Signer derives an hourly credential from a shared secret: the SHA-256 of the secret
// followed by the current hour in a fixed-offset zone, formatted "2006-01-02-15".
// It is recomputed on every request.
type Signer struct {
	secret string
	header string
	zone   *time.Location
	now    func() time.Time
}

// NewSigner creates a Signer for a zone offsetHours east of UTC. A nil now uses time.Now.
func NewSigner(secret, header string, offsetHours int, now func() time.Time) *Signer {
	if header == "" {
		header = DefaultSignatureHeader
	}
	if now == nil {
		now = time.Now
	}
	zone := time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
	return &Signer{secret: secret, header: header, zone: zone, now: now}
}

// Signature returns the credential valid during the hour containing t.
func (s *Signer) Signature(t time.Time) string {
	hour := t.In(s.zone).Truncate(time.Hour).Format("2006-01-02-15")
	sum := sha256.Sum256([]byte(s.secret + hour))
	return hex.EncodeToString(sum[:])
}

// Sign sets the signature header on req.
func (s *Signer) Sign(req *http.Request) {
	req.Header.Set(s.header, s.Signature(s.now()))
}
