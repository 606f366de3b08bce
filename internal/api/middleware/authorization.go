package middleware

import (
	"fmt"
	"net/http"
	"strings"

	internal_jwt "lead-intake-backend/internal/jwt"
)

// OperatorAuthorization guards console endpoints. It expects a bearer token
// issued for the operator role and rejects everything else before the
// handler runs.
func OperatorAuthorization() Middleware {
	return func(f http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, err := ValidateOperatorJWT(r); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			f(w, r)
		}
	}
}

func ValidateOperatorJWT(r *http.Request) (internal_jwt.Operator, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return internal_jwt.Operator{}, fmt.Errorf("missing authorization header")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return internal_jwt.Operator{}, fmt.Errorf("invalid authorization header format")
	}

	claims, err := internal_jwt.ParseToken(tokenString, internal_jwt.RoleOperator)
	if err != nil {
		return internal_jwt.Operator{}, fmt.Errorf("invalid token: %w", err)
	}

	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	if id == "" {
		return internal_jwt.Operator{}, fmt.Errorf("token missing operator id")
	}

	return internal_jwt.Operator{Id: id, Email: email}, nil
}
