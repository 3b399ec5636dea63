package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tradesync/pkg/response"
)

// TokenHeader carries the raw JWT on private routes.
const TokenHeader = "x-auth-token"

const (
	MsgNoToken      = "No token, authorization denied"
	MsgInvalidToken = "Token is not valid"
)

// TokenVerifier returns the user id carried by a valid token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth verifies the x-auth-token header and sets userID in the Gin context.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, MsgNoToken, nil)
			return
		}
		userID, err := v.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, MsgInvalidToken, nil)
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}
