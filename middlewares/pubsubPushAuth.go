package middlewares

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/billing_backend/config"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/idtoken"
)

// PubSubPushAuth verifies a Pub/Sub push request before its payload is trusted.
//
// Env:
// - PUBSUB_PUSH_AUDIENCE: the bearer must be a Google-signed OIDC token for this audience
// - PUBSUB_PUSH_SERVICE_ACCOUNT: optional; the token's email must match
// - PUBSUB_PUSH_TOKEN: shared secret passed as ?token= on the push endpoint URL
//
// With none of them set every push is rejected.
func PubSubPushAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		audience := strings.TrimSpace(os.Getenv("PUBSUB_PUSH_AUDIENCE"))
		shared := os.Getenv("PUBSUB_PUSH_TOKEN")

		var reason string
		switch {
		case audience != "":
			reason = verifyPushOIDC(c, audience)
		case shared != "":
			if subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(shared)) != 1 {
				reason = "push token mismatch"
			}
		default:
			reason = "push verification is not configured"
		}
		if reason != "" {
			config.GetLogger().WithFields(logrus.Fields{
				"field": "PubSubPushAuth",
				"path":  c.FullPath(),
			}).Warn("rejected pubsub push: " + reason)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func verifyPushOIDC(c *gin.Context, audience string) string {
	auth := c.Request.Header.Get("Authorization")
	bearer := "Bearer "
	if !strings.HasPrefix(auth, bearer) {
		return "missing bearer token"
	}
	payload, err := idtoken.Validate(c.Request.Context(), strings.TrimSpace(auth[len(bearer):]), audience)
	if err != nil {
		return "invalid oidc token: " + err.Error()
	}
	if account := strings.TrimSpace(os.Getenv("PUBSUB_PUSH_SERVICE_ACCOUNT")); account != "" {
		email, _ := payload.Claims["email"].(string)
		verified, _ := payload.Claims["email_verified"].(bool)
		if !verified || !strings.EqualFold(email, account) {
			return "oidc token issued to " + email
		}
	}
	return ""
}
