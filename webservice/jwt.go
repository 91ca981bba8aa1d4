package webservice

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type relayClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) generateToken(role string) (string, error) {
	claims := &relayClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
			Issuer:    "streamrelay",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// handleToken exchanges the shared secret for a short-lived JWT. The role in
// the request body is informational; anyone holding the secret gets a token.
func (s *Service) handleToken(c *gin.Context) {
	if len(s.jwtSecret) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "auth disabled"})
		return
	}
	var req struct {
		Secret string `json:"secret"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), s.jwtSecret) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role := req.Role
	if role == "" {
		role = "viewer"
	}
	token, err := s.generateToken(role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// authMiddleware accepts the token from the auth_token cookie, a Bearer
// header, or a token query parameter (browser websockets cannot set headers).
// With no secret configured the middleware lets everything through.
func (s *Service) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.jwtSecret) == 0 {
			c.Next()
			return
		}

		tokenString, _ := c.Cookie("auth_token")
		if tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
				tokenString = authHeader[7:]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" || !s.validateToken(tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Service) validateToken(tokenString string) bool {
	claims := &relayClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	return err == nil && token.Valid
}
