package feed

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// tokenWith builds an obfuscated token whose payload embeds targetURL
// behind a varint length prefix, the way real tokens carry it.
func tokenWith(targetURL string) string {
	payload := []byte{0x08, 0x13, 0x22}
	length := len(targetURL)
	if length > 0x7f {
		payload = append(payload, byte(length&0x7f)|0x80, byte(length>>7))
	} else {
		payload = append(payload, byte(length))
	}
	payload = append(payload, targetURL...)
	payload = append(payload, 0xd2, 0x01, 0x00)
	return base64.RawURLEncoding.EncodeToString(payload)
}

func TestDecodeTokenExtractsEmbeddedURL(t *testing.T) {
	want := "https://www.example.com/news/some-story"
	got, err := DecodeToken(tokenWith(want), 0)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if got != want {
		t.Fatalf("decoded url = %q, want %q", got, want)
	}
}

func TestDecodeTokenTwoByteLengthPrefix(t *testing.T) {
	want := "https://www.example.com/" + strings.Repeat("a", 150)
	got, err := DecodeToken(tokenWith(want), 0)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if got != want {
		t.Fatalf("decoded url = %q, want %q", got, want)
	}
}

func TestDecodeTokenIsDeterministic(t *testing.T) {
	token := tokenWith("https://example.com/path")
	first, err := DecodeToken(token, 0)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := DecodeToken(token, 0)
		if err != nil || again != first {
			t.Fatalf("run %d: got (%q, %v), want (%q, nil)", i, again, err, first)
		}
	}
}

func TestDecodeTokenToleratesPadding(t *testing.T) {
	want := "https://example.com/padd"
	token := tokenWith(want)
	if pad := len(token) % 4; pad != 0 {
		token += strings.Repeat("=", 4-pad)
	}
	got, err := DecodeToken(token, 0)
	if err != nil {
		t.Fatalf("DecodeToken with padding: %v", err)
	}
	if got != want {
		t.Fatalf("decoded url = %q, want %q", got, want)
	}
}

func TestDecodeTokenFailureReasons(t *testing.T) {
	truncated := base64.RawURLEncoding.EncodeToString(append([]byte{0x7f}, "https://a"...))

	cases := []struct {
		name   string
		token  string
		maxLen int
		reason DecodeReason
	}{
		{name: "empty", token: "   ", reason: ReasonBadEncoding},
		{name: "invalid base64", token: "not!!valid##base64", reason: ReasonBadEncoding},
		{name: "over length guard", token: tokenWith("https://example.com/x"), maxLen: 4, reason: ReasonTokenTooLong},
		{name: "no url in payload", token: base64.RawURLEncoding.EncodeToString([]byte("plain payload bytes")), reason: ReasonNoEmbeddedURL},
		{name: "length prefix past buffer", token: truncated, reason: ReasonTruncated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeToken(tc.token, tc.maxLen)
			if err == nil {
				t.Fatalf("expected error")
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected DecodeError, got %T", err)
			}
			if de.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", de.Reason, tc.reason)
			}
		})
	}
}

func TestTokenFromHref(t *testing.T) {
	cases := []struct {
		href string
		want string
	}{
		{href: "./articles/CBMiT0FV?hl=en-US&gl=US", want: "CBMiT0FV"},
		{href: "https://news.google.com/read/CBMiT0FV", want: "CBMiT0FV"},
		{href: "/articles/abc123/", want: "abc123"},
		{href: "./stories/CBMiT0FV", want: ""},
		{href: "/articles/", want: ""},
		{href: "", want: ""},
	}

	for _, tc := range cases {
		if got := TokenFromHref(tc.href); got != tc.want {
			t.Fatalf("TokenFromHref(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}
}
