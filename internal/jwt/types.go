package jwt

type Role int

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Operator is the identity carried inside console access tokens.
type Operator struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}
