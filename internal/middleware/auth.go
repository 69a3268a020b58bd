package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
)

const userContextKey = "currentUser"

// Protect validates the bearer token and loads the user fresh from the store,
// so the role on the request is always current, not the role at token issue.
func Protect(userRepo domain.UserRepository, jwtSecret string, log *logrus.Logger) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			log.Warn("Middleware: Authorization header missing or malformed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token missing"})
			return
		}

		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Warnf("Middleware: Token validation failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		idClaim, ok := claims["id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		user, err := userRepo.GetUserByID(int64(idClaim))
		if err != nil {
			log.Warnf("Middleware: Token subject %d no longer exists", int64(idClaim))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User no longer exists"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Protect. It panics if called on a
// route that is not behind Protect.
func CurrentUser(c *gin.Context) *domain.User {
	return c.MustGet(userContextKey).(*domain.User)
}

func FarmerOnly(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c).Role != domain.RoleFarmer {
			log.Warnf("Middleware: Non-farmer user %d denied farmer route", CurrentUser(c).ID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied: Farmers only"})
			return
		}
		c.Next()
	}
}

func CustomerOnly(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c).Role != domain.RoleCustomer {
			log.Warnf("Middleware: Non-customer user %d denied customer route", CurrentUser(c).ID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied: Customers only"})
			return
		}
		c.Next()
	}
}
