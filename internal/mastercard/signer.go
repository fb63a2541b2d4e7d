// ABOUTME: OAuth 1.0a request signing with RSA-SHA256 for the ATM location API.
// ABOUTME: Builds the signature base string, body hash, and Authorization header.

// Package mastercard signs and issues requests against the Mastercard
// Locations API. Signing follows OAuth 1.0a with the RSA-SHA256 method and
// the body-hash extension for payload-carrying requests.
package mastercard

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidKey is returned when the configured private key cannot be parsed.
// Signing never proceeds with a bad key; the outbound call is aborted.
var ErrInvalidKey = errors.New("invalid RSA private key")

// bodyHashMethods are the HTTP methods whose non-empty payload is bound into
// the signature via oauth_body_hash.
var bodyHashMethods = map[string]bool{
	"POST":  true,
	"PUT":   true,
	"PATCH": true,
}

// Signer produces OAuth 1.0a Authorization headers. Safe for concurrent use.
type Signer struct {
	consumerKey string
	key         *rsa.PrivateKey

	// Overridable for deterministic tests.
	nonce func() (string, error)
	now   func() time.Time
}

// NewSigner parses the PEM-encoded private key and returns a ready signer.
// Both PKCS#8 and PKCS#1 encodings are accepted.
func NewSigner(consumerKey string, privateKeyPEM []byte) (*Signer, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidKey)
	}

	var key *rsa.PrivateKey
	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: key is not RSA", ErrInvalidKey)
		}
		key = rsaKey
	} else if parsed, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		key = parsed
	} else {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Signer{
		consumerKey: consumerKey,
		key:         key,
		nonce:       randomNonce,
		now:         time.Now,
	}, nil
}

// randomNonce returns 32 hex characters of fresh randomness.
func randomNonce() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

// param is one OAuth parameter. Header emission preserves this order; the
// base string sorts a merged copy instead.
type param struct {
	key, value string
}

// Authorization signs one outbound request and returns the full
// `OAuth ...` header value. The raw URL may carry query parameters; they are
// folded into the signature but stay on the URL, not in the header.
func (s *Signer) Authorization(method, rawURL string, body []byte) (string, error) {
	nonce, err := s.nonce()
	if err != nil {
		return "", err
	}

	params := []param{
		{"oauth_consumer_key", s.consumerKey},
		{"oauth_nonce", nonce},
		{"oauth_signature_method", "RSA-SHA256"},
		{"oauth_timestamp", strconv.FormatInt(s.now().Unix(), 10)},
		{"oauth_version", "1.0"},
	}
	if bodyHashMethods[strings.ToUpper(method)] && len(body) > 0 {
		params = append(params, param{"oauth_body_hash", bodyHash(body)})
	}

	base, err := signatureBaseString(method, rawURL, params)
	if err != nil {
		return "", err
	}
	signature, err := s.sign(base)
	if err != nil {
		return "", err
	}
	params = append(params, param{"oauth_signature", signature})

	var b strings.Builder
	b.WriteString("OAuth ")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(percentEncode(p.key))
		b.WriteString(`="`)
		b.WriteString(percentEncode(p.value))
		b.WriteString(`"`)
	}
	return b.String(), nil
}

// bodyHash computes base64(sha256(body)).
func bodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// sign produces base64(RSA-SHA256(baseString)) with PKCS#1 v1.5 padding.
func (s *Signer) sign(baseString string) (string, error) {
	digest := sha256.Sum256([]byte(baseString))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// signatureBaseString builds METHOD&enc(baseURL)&enc(paramString). The base
// URL drops the query string and elides default ports; the parameter string
// merges the OAuth parameters with the URL's query parameters, sorted by key.
func signatureBaseString(method, rawURL string, oauthParams []param) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing request url: %w", err)
	}

	host := u.Hostname()
	baseURL := u.Scheme + "://" + host
	if port := u.Port(); port != "" && port != "443" && port != "80" {
		baseURL += ":" + port
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	baseURL += path

	merged := make([]param, len(oauthParams))
	copy(merged, oauthParams)
	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", fmt.Errorf("parsing query string: %w", err)
	}
	for key, values := range query {
		for _, v := range values {
			merged = append(merged, param{key, v})
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].key != merged[j].key {
			return merged[i].key < merged[j].key
		}
		return merged[i].value < merged[j].value
	})

	pairs := make([]string, 0, len(merged))
	for _, p := range merged {
		pairs = append(pairs, percentEncode(p.key)+"="+percentEncode(p.value))
	}
	paramString := strings.Join(pairs, "&")

	return strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(paramString), nil
}

// percentEncode applies RFC 3986 encoding: unreserved characters pass
// through, everything else becomes %XX with uppercase hex.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}
