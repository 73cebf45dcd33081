package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const issuer = "widget-canvas"

var jwtSecret []byte

// AppClaims represents the custom claims for the JWT.
type AppClaims struct {
	jwt.RegisteredClaims
}

// InitAuth sets the HS256 signing secret. An empty secret leaves the API open.
func InitAuth(secret string) {
	jwtSecret = []byte(secret)
	if len(jwtSecret) == 0 {
		logrus.Warn("API_TOKEN_SECRET is not set. The API accepts unauthenticated requests.")
		return
	}
	logrus.Info("API token authentication enabled")
}

// Enabled reports whether requests must carry a token.
func Enabled() bool {
	return len(jwtSecret) > 0
}

// IssueToken mints a token for subject valid for ttl.
func IssueToken(subject string, ttl time.Duration) (string, error) {
	if !Enabled() {
		return "", errors.New("API_TOKEN_SECRET is not set")
	}

	now := time.Now()
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseJWT(tokenString string) (*AppClaims, error) {
	claims := &AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// HandleWhoAmI echoes the caller's token claims. It expects to run behind the auth middleware.
func HandleWhoAmI(claimsFrom func(r *http.Request) (*AppClaims, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			render.JSON(w, r, map[string]any{"authenticated": false})
			return
		}

		resp := map[string]any{
			"authenticated": true,
			"subject":       claims.Subject,
		}
		if claims.ExpiresAt != nil {
			resp["expires_at"] = claims.ExpiresAt.Time
		}
		render.JSON(w, r, resp)
	}
}
