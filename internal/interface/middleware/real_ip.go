package middleware

import (
	"github.com/gin-gonic/gin"
)

// ClientIPHeaders are read, in order, only when the direct peer is a trusted proxy.
var ClientIPHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// TrustProxies limits which peers may set the client address through
// ClientIPHeaders. proxies holds IPs or CIDRs; an empty list trusts none and
// ClientIP is always the socket peer.
func TrustProxies(engine *gin.Engine, proxies []string) error {
	engine.RemoteIPHeaders = ClientIPHeaders
	if len(proxies) == 0 {
		return engine.SetTrustedProxies(nil)
	}
	return engine.SetTrustedProxies(proxies)
}

// RealIP stores gin's ClientIP under "real_ip" for handlers and rate limits.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}
