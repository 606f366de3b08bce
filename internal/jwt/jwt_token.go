package jwt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lead-intake-backend/utils"

	"github.com/golang-jwt/jwt"
)

func appendRoleChar(token string, role Role) string {
	switch role {
	case RoleOperator:
		return token + "1"
	}
	return token
}

func expectedRoleChar(role Role) string {
	switch role {
	case RoleOperator:
		return "1"
	}
	return ""
}

func CreateToken(operator Operator, role Role, validUntil int64) (string, error) {
	secret, ok := RoleSecrets[role]
	if !ok {
		return "", fmt.Errorf("invalid role specified")
	}

	if validUntil == 0 {
		now := time.Now()
		validUntil = now.Add(time.Minute * 15).Unix()
	}

	claims := jwt.MapClaims{
		"id":    operator.Id,
		"email": operator.Email,
		"exp":   validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return appendRoleChar(tokenString, role), nil
}

func CreateTokenWithRefresh(operator Operator, role Role, validUntil int64) (TokenResponse, error) {
	accessToken, err := CreateToken(operator, role, validUntil)
	if err != nil {
		return TokenResponse{}, err
	}

	refreshToken := utils.CreateToken()
	if refreshToken == "" {
		return TokenResponse{}, fmt.Errorf("failed to generate refresh token")
	}

	payload, err := json.Marshal(operator)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("marshal refresh payload: %w", err)
	}

	key := fmt.Sprintf("refresh:%d:%s", role, refreshToken)
	if err := RedisClient.Set(context.Background(), key, payload, RefreshTokenTTL).Err(); err != nil {
		return TokenResponse{}, fmt.Errorf("store refresh token: %w", err)
	}

	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ConsumeRefreshToken exchanges a refresh token for the operator identity it
// was issued to, deleting it so each refresh token is single-use.
func ConsumeRefreshToken(refreshToken string, role Role) (Operator, error) {
	key := fmt.Sprintf("refresh:%d:%s", role, refreshToken)

	payload, err := RedisClient.Get(context.Background(), key).Result()
	if err != nil {
		return Operator{}, fmt.Errorf("refresh token not found: %w", err)
	}

	var operator Operator
	if err := json.Unmarshal([]byte(payload), &operator); err != nil {
		return Operator{}, fmt.Errorf("unmarshal refresh payload: %w", err)
	}

	if err := RedisClient.Del(context.Background(), key).Err(); err != nil {
		return Operator{}, fmt.Errorf("invalidate refresh token: %w", err)
	}

	return operator, nil
}

func ParseToken(tokenString string, role Role) (jwt.MapClaims, error) {
	roleChar := expectedRoleChar(role)
	if roleChar == "" || len(tokenString) <= len(roleChar) {
		return nil, fmt.Errorf("invalid token")
	}

	if tokenString[len(tokenString)-len(roleChar):] != roleChar {
		return nil, fmt.Errorf("token role mismatch")
	}
	tokenString = tokenString[:len(tokenString)-len(roleChar)]

	secret, ok := RoleSecrets[role]
	if !ok {
		return nil, fmt.Errorf("invalid role specified")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
