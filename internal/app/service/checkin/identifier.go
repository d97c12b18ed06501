package checkin

import (
	"encoding/json"
	"strings"

	"github.com/fatflowers/gymgate/pkg/tool"
)

// Identifier is what a kiosk scanner hands us: a raw member id, an encoded QR
// payload, or an opaque biometric token. The variant is decided once, up
// front, so resolution is a single exhaustive switch instead of sequential
// trial parsing.
type Identifier interface {
	isIdentifier()
}

// RawID is a member UUID typed or scanned directly.
type RawID struct {
	MemberID string
}

// EncodedPayload is the JSON body of a QR code issued by the member app.
type EncodedPayload struct {
	MemberID string `json:"member_id"`
	IssuedAt string `json:"issued_at,omitempty"`
}

// BiometricStub is an opaque enrollment token from a biometric scanner.
type BiometricStub struct {
	Token string
}

func (RawID) isIdentifier()          {}
func (EncodedPayload) isIdentifier() {}
func (BiometricStub) isIdentifier()  {}

const biometricPrefix = "bio:"

// ParseIdentifier classifies the scanned input. Unresolvable input is rejected
// here, before any storage lookup happens.
func ParseIdentifier(raw string) (Identifier, *DomainError) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, invalidFormat("identifier is empty")
	}

	if tool.IsUUID(s) {
		return RawID{MemberID: s}, nil
	}

	if token, ok := strings.CutPrefix(s, biometricPrefix); ok {
		if token == "" {
			return nil, invalidFormat("biometric token is empty")
		}
		return BiometricStub{Token: token}, nil
	}

	if strings.HasPrefix(s, "{") {
		var p EncodedPayload
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, invalidFormat("identifier payload is not valid JSON")
		}
		if !tool.IsUUID(p.MemberID) {
			return nil, invalidFormat("identifier payload has no valid member_id")
		}
		return p, nil
	}

	return nil, invalidFormat("identifier is neither a member id, QR payload, nor biometric token")
}
