package validator

import (
	"github.com/golang-jwt/jwt/v5"

	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/model"
)

// UserIDClaim is the session token claim holding the user id.
const UserIDClaim = "user-id"

// Identifier tries the ID, email and username parsers in that order and
// returns the first that accepts raw, tagged with its kind.
func (v *Validator) Identifier(raw any) (model.Identifier, error) {
	if id, err := v.ID(raw); err == nil {
		return model.IDIdentifier(id), nil
	}
	if email, err := v.Email(raw); err == nil {
		return model.EmailIdentifier(email), nil
	}
	if username, err := v.Username(raw); err == nil {
		return model.UsernameIdentifier(username), nil
	}
	return model.Identifier{}, errs.ErrUUIDFormat
}

// TokenUserID decodes a session token without checking its signature and
// returns the user id it claims.
func (v *Validator) TokenUserID(raw any) (int64, error) {
	token, ok := raw.(string)
	if !ok {
		return 0, errs.ErrTokenType
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, errs.ErrTokenFormat
	}

	claimed, ok := claims[UserIDClaim]
	if !ok {
		return 0, errs.ErrTokenFormat
	}
	id, err := v.ID(claimed)
	if err != nil {
		return 0, errs.ErrTokenFormat
	}
	return id, nil
}
