package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/forgeheat/pkg/response"
)

const subjectKey = "subject"

// Auth requires an HS256 bearer token signed with secret and records its
// subject. An empty secret disables the check
func Auth(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		if claims.Subject == "" {
			response.Unauthorized(c, "token has no subject")
			return
		}

		c.Set(subjectKey, claims.Subject)
		c.Next()
	}
}

// Subject returns the authenticated subject, if the request carried one
func Subject(c *gin.Context) (string, bool) {
	sub := c.GetString(subjectKey)
	return sub, sub != ""
}

// AuthorizeUID resolves the uid a request may act on. Without an
// authenticated subject uid is returned unchanged; with one, an empty uid
// becomes the subject and any other uid is rejected
func AuthorizeUID(c *gin.Context, uid string) (string, bool) {
	sub, ok := Subject(c)
	if !ok {
		return uid, true
	}
	if uid == "" {
		return sub, true
	}
	return uid, uid == sub
}
