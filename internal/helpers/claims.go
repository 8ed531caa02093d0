package helpers

import "github.com/google/uuid"

type AuthenticatedUser struct {
	*CustomClaims
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email,omitempty"`
}

func (au *AuthenticatedUser) IsOwner(userId uuid.UUID) bool {
	return au.UserID == userId
}
