package feed

import (
	"encoding/base64"
	"strings"
)

// DefaultMaxTokenLen bounds token input size when the caller does not
// configure a guard.
const DefaultMaxTokenLen = 2048

// DecodeReason classifies why a token could not be decoded.
type DecodeReason string

const (
	ReasonTokenTooLong  DecodeReason = "token_too_long"
	ReasonBadEncoding   DecodeReason = "bad_encoding"
	ReasonNoEmbeddedURL DecodeReason = "no_embedded_url"
	ReasonTruncated     DecodeReason = "truncated_payload"
)

// DecodeError reports a failed token decode. Callers must treat it as
// "resolved URL unavailable", never as fatal to a run.
type DecodeError struct {
	Reason DecodeReason
}

func (e *DecodeError) Error() string {
	return "decode article token: " + string(e.Reason)
}

var (
	schemeHTTP  = []byte("http://")
	schemeHTTPS = []byte("https://")
)

// DecodeToken extracts the destination URL statically embedded in an
// obfuscated article token. The token's internal schema is undocumented and
// may vary by version, so decoding is a bounded two-stage scan: urlsafe
// base64 (padding-tolerant) into bytes, then a search for a scheme prefix
// guarded by the length prefix that precedes it. Deterministic, no I/O.
//
// Tokens whose payload carries no embedded URL (some feed variants require
// a network round-trip to resolve) yield ReasonNoEmbeddedURL.
func DecodeToken(token string, maxLen int) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", &DecodeError{Reason: ReasonBadEncoding}
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxTokenLen
	}
	if len(token) > maxLen {
		return "", &DecodeError{Reason: ReasonTokenTooLong}
	}

	buf, err := decodeBase64(token)
	if err != nil {
		return "", &DecodeError{Reason: ReasonBadEncoding}
	}

	return extractEmbeddedURL(buf)
}

// decodeBase64 decodes urlsafe base64, tolerating missing or present
// padding and the standard alphabet.
func decodeBase64(token string) ([]byte, error) {
	trimmed := strings.TrimRight(token, "=")

	buf, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err == nil {
		return buf, nil
	}
	return base64.RawStdEncoding.DecodeString(trimmed)
}

// extractEmbeddedURL scans for a scheme prefix whose preceding length
// prefix (protobuf-style varint, one or two bytes) covers a printable run
// inside the buffer. A scheme without a valid in-bounds length yields
// ReasonTruncated; no scheme at all yields ReasonNoEmbeddedURL.
func extractEmbeddedURL(buf []byte) (string, error) {
	sawScheme := false

	for i := 1; i < len(buf); i++ {
		if !schemeAt(buf, i) {
			continue
		}
		sawScheme = true

		if u, ok := sliceAt(buf, i); ok {
			return u, nil
		}
	}

	if sawScheme {
		return "", &DecodeError{Reason: ReasonTruncated}
	}
	return "", &DecodeError{Reason: ReasonNoEmbeddedURL}
}

func schemeAt(buf []byte, i int) bool {
	return hasPrefixAt(buf, i, schemeHTTP) || hasPrefixAt(buf, i, schemeHTTPS)
}

func hasPrefixAt(buf []byte, i int, prefix []byte) bool {
	if i+len(prefix) > len(buf) {
		return false
	}
	for j, b := range prefix {
		if buf[i+j] != b {
			return false
		}
	}
	return true
}

// sliceAt applies the varint length ending right before index i and
// validates the resulting slice. Both the two-byte and one-byte varint
// forms are considered; a partial or garbled slice is rejected.
func sliceAt(buf []byte, i int) (string, bool) {
	if i >= 2 && buf[i-2]&0x80 != 0 && buf[i-1]&0x80 == 0 {
		length := int(buf[i-2]&0x7f) | int(buf[i-1])<<7
		if u, ok := takeSlice(buf, i, length); ok {
			return u, true
		}
	}
	if buf[i-1]&0x80 == 0 {
		length := int(buf[i-1])
		if u, ok := takeSlice(buf, i, length); ok {
			return u, true
		}
	}
	return "", false
}

func takeSlice(buf []byte, i, length int) (string, bool) {
	if length <= len(schemeHTTP) || i+length > len(buf) {
		return "", false
	}
	candidate := buf[i : i+length]
	for _, b := range candidate {
		if b < 0x21 || b > 0x7e {
			return "", false
		}
	}
	return string(candidate), true
}

// TokenFromHref pulls the opaque article token out of a listing href such
// as "./articles/<token>?hl=en-US" or "/read/<token>". Returns "" when the
// href does not carry a token segment.
func TokenFromHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	if idx := strings.IndexAny(href, "?#"); idx >= 0 {
		href = href[:idx]
	}

	for _, marker := range []string{"/articles/", "/read/"} {
		idx := strings.Index(href, marker)
		if idx < 0 {
			continue
		}
		token := href[idx+len(marker):]
		token = strings.Trim(token, "/")
		if token != "" && !strings.Contains(token, "/") {
			return token
		}
	}
	return ""
}
