package paystack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
)

// SignatureHeader carries the HMAC of a webhook body
const SignatureHeader = "x-paystack-signature"

// StatusSuccess is the verified status of a settled charge
const StatusSuccess = "success"

// Transaction is the subset of a verified charge the ledger consumes. Amounts are in minor units.
type Transaction struct {
	ID        int64    `json:"id"`
	Status    string   `json:"status"`
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Fees      int64    `json:"fees"`
	Currency  string   `json:"currency"`
	Metadata  Metadata `json:"metadata"`
}

// Metadata is the custom payload attached at initialization.
type Metadata struct {
	UserID string `json:"user_id"`
}

// UnmarshalJSON accepts the empty string Paystack sends when no metadata was attached.
func (m *Metadata) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		*m = Metadata{}
		return nil
	}
	type plain Metadata
	return json.Unmarshal(b, (*plain)(m))
}

// InitializeRequest starts a hosted checkout
type InitializeRequest struct {
	Email       string
	UserID      string
	AmountMinor int64
	CallbackURL string
}

// Authorization is where the payer completes a checkout
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// ValidateSignature reports whether signature is the hex HMAC-SHA512 of body under secret.
func ValidateSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature Paystack would send for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
