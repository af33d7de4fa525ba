package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a bcard2 login token.
type Claims struct {
	UserID     string      `json:"_id"`
	Name       models.Name `json:"name"`
	IsBusiness bool        `json:"isBusiness"`
	IsAdmin    bool        `json:"isAdmin"`
	jwt.RegisteredClaims
}

// DecodeToken reads the user and expiry out of token. The signature is not
// verified: the key belongs to the API, which checks it on every call.
// A zero time means the token carries no expiry.
func DecodeToken(token string) (models.User, time.Time, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return models.User{}, time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return models.User{}, time.Time{}, fmt.Errorf("%w: missing _id", common.ErrInvalidToken)
	}

	user := models.User{
		ID:         claims.UserID,
		Name:       claims.Name,
		IsBusiness: claims.IsBusiness,
		IsAdmin:    claims.IsAdmin,
	}

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return user, exp, nil
}
