package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JwtCustomClaim identifies the acting user and the business they act for.
type JwtCustomClaim struct {
	UserId     string `json:"user_id"`
	BusinessId string `json:"business_id"`
	Role       string `json:"role"`
	jwt.StandardClaims
}

var ErrMissingJwtSecret = errors.New("API_SECRET is not set (set ALLOW_DEV_JWT_SECRET=true to use the local dev secret)")

const devJwtSecret = "billing-dev-secret"

// getJwtSecret returns API_SECRET. The built-in dev secret is only used when
// ALLOW_DEV_JWT_SECRET=true, so a missing secret fails closed.
func getJwtSecret() ([]byte, error) {
	if secret := os.Getenv("API_SECRET"); secret != "" {
		return []byte(secret), nil
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_DEV_JWT_SECRET")), "true") {
		return []byte(devJwtSecret), nil
	}
	return nil, ErrMissingJwtSecret
}

// CheckJwtSecret is called at startup; the server refuses to run without a secret.
func CheckJwtSecret() error {
	_, err := getJwtSecret()
	return err
}

func tokenLifespan() time.Duration {
	hours, err := strconv.Atoi(strings.TrimSpace(os.Getenv("TOKEN_HOUR_LIFESPAN")))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func JwtGenerate(userId string, businessId string, role string) (string, error) {
	if strings.TrimSpace(businessId) == "" {
		return "", errors.New("business id is required")
	}
	secret, err := getJwtSecret()
	if err != nil {
		return "", err
	}
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		UserId:     userId,
		BusinessId: businessId,
		Role:       role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(tokenLifespan()).Unix(),
			IssuedAt:  now.Unix(),
		},
	})
	return t.SignedString(secret)
}

func JwtValidate(token string) (*jwt.Token, error) {
	secret, err := getJwtSecret()
	if err != nil {
		return nil, err
	}
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return secret, nil
	})
}
