package payvault

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignatureHeader is the HTTP header carrying the webhook signature.
const SignatureHeader = "X-PayVault-Signature"

// VerifyWebhookSignature checks the HMAC-SHA512 hex digest of the raw,
// unparsed request body against the signature header. Re-serializing
// parsed JSON before hashing would desynchronize the signature, so the
// body must be passed through exactly as received. A missing header or
// a mismatch is a normal negative result, not an error.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(c.webhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
