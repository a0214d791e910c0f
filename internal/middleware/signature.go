package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// SignatureHeader carries the HMAC of the raw request body.
const SignatureHeader = "X-Hub-Signature-256"

const signaturePrefix = "sha256="

// VerifySignature authenticates POST webhook deliveries by recomputing the
// HMAC-SHA256 of the exact raw body bytes with the shared app secret and
// comparing it, scheme-prefixed, to the header value in constant time.
// Non-POST requests (the subscription handshake) pass through unverified.
func VerifySignature(appSecret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			signature := r.Header.Get(SignatureHeader)
			if signature == "" {
				log.Warn("missing webhook signature")
				http.Error(w, `{"error":"Missing signature"}`, http.StatusForbidden)
				return
			}

			if appSecret == "" {
				log.Error("missing WHATSAPP_APP_SECRET")
				http.Error(w, `{"error":"Server configuration error"}`, http.StatusInternalServerError)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
				return
			}
			r.Body.Close()
			// Restore the body for the gates and the handler.
			r.Body = io.NopCloser(bytes.NewReader(body))

			mac := hmac.New(sha256.New, []byte(appSecret))
			mac.Write(body)
			expected := signaturePrefix + hex.EncodeToString(mac.Sum(nil))

			if !hmac.Equal([]byte(signature), []byte(expected)) {
				log.Warn("invalid webhook signature", zap.String("signature", signature))
				http.Error(w, `{"error":"Invalid signature"}`, http.StatusForbidden)
				return
			}

			log.Debug("webhook signature verified")
			next.ServeHTTP(w, r)
		})
	}
}
