package console

import (
	"fmt"

	internaljwt "lead-intake-backend/internal/jwt"
)

// jwtTokenIssuer is the production TokenIssuer, backed by HS256 access
// tokens and Redis-stored single-use refresh tokens.
type jwtTokenIssuer struct{}

func NewJWTTokenIssuer() TokenIssuer {
	return jwtTokenIssuer{}
}

func (jwtTokenIssuer) Issue(identity Identity) (Tokens, error) {
	res, err := internaljwt.CreateTokenWithRefresh(
		internaljwt.Operator{Id: identity.OperatorID, Email: identity.Email},
		internaljwt.RoleOperator,
		0,
	)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
}

func (jwtTokenIssuer) Consume(refreshToken string) (Identity, error) {
	operator, err := internaljwt.ConsumeRefreshToken(refreshToken, internaljwt.RoleOperator)
	if err != nil {
		return Identity{}, err
	}
	return Identity{OperatorID: operator.Id, Email: operator.Email}, nil
}

func (jwtTokenIssuer) Parse(accessToken string) (Identity, error) {
	claims, err := internaljwt.ParseToken(accessToken, internaljwt.RoleOperator)
	if err != nil {
		return Identity{}, err
	}
	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	if id == "" {
		return Identity{}, fmt.Errorf("token missing operator id")
	}
	return Identity{OperatorID: id, Email: email}, nil
}
