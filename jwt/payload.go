package jwt

import (
	"encoding/json"
	"errors"
	"strings"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a token does not carry a middle segment.
	ErrMalformedToken = errors.New("malformed token")
	// ErrMissingSubject is returned when the decoded payload has no usable "sub" claim.
	ErrMissingSubject = errors.New("token payload missing subject")
)

// Decoder turns an encoded token segment into its decoded text.
type Decoder func(segment string) (string, error)

var segmentParser = gjwt.NewParser(gjwt.WithPaddingAllowed())

// SegmentDecoder is the default [Decoder]. It base64url-decodes the segment,
// tolerating padding.
func SegmentDecoder(segment string) (string, error) {
	raw, err := segmentParser.DecodeSegment(segment)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// MiddleSegment returns the text between the first and last '.' of token.
func MiddleSegment(token string) (string, error) {
	first := strings.IndexByte(token, '.')
	last := strings.LastIndexByte(token, '.')
	if first < 0 || last <= first {
		return "", ErrMalformedToken
	}
	seg := token[first+1 : last]
	if seg == "" {
		return "", ErrMalformedToken
	}
	return seg, nil
}

// Subject parses decoded payload text as JSON claims and returns "sub".
func Subject(decoded string) (string, error) {
	var claims gjwt.MapClaims
	if err := json.Unmarshal([]byte(decoded), &claims); err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(sub) == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}

// UnverifiedSubject runs MiddleSegment, decode and Subject in order.
// A nil decode uses [SegmentDecoder].
func UnverifiedSubject(token string, decode Decoder) (string, error) {
	if decode == nil {
		decode = SegmentDecoder
	}
	seg, err := MiddleSegment(token)
	if err != nil {
		return "", err
	}
	text, err := decode(seg)
	if err != nil {
		return "", err
	}
	return Subject(text)
}
