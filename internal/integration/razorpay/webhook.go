package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader заголовок с подписью вебхука Razorpay
const SignatureHeader = "X-Razorpay-Signature"

// VerifySignature проверяет HMAC-SHA256 подпись вебхука. Дайджест считается
// по сырым байтам тела запроса; сравнение выполняется за постоянное время.
func VerifySignature(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature проверяет подпись вебхука секретом клиента
func (c *Client) VerifyWebhookSignature(payload []byte, signature string) bool {
	return VerifySignature(payload, signature, c.webhookSecret)
}
