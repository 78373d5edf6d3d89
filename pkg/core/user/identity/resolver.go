// Package identity classifies ambiguous user references.
package identity

import (
	"context"
	"errors"

	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/model"
	"user-portal/pkg/core/user/repository/dao"
)

// Parser is the identifier union parser, satisfied by *validator.Validator.
type Parser interface {
	Identifier(raw any) (model.Identifier, error)
}

type Resolver struct {
	parser Parser
}

func NewResolver(parser Parser) *Resolver {
	return &Resolver{parser: parser}
}

// Resolve tags raw as an id, email or username, in that order of precedence.
func (r *Resolver) Resolve(raw any) (model.Identifier, error) {
	return r.parser.Identifier(raw)
}

// Find resolves raw and loads the user it names. A well-formed identifier
// that matches nobody yields errs.ErrUserNotFound.
func (r *Resolver) Find(ctx context.Context, users dao.UserRepository, raw any) (model.User, model.Identifier, error) {
	ident, err := r.Resolve(raw)
	if err != nil {
		return model.User{}, model.Identifier{}, err
	}

	user, err := users.GetUser(ctx, ident)
	if errors.Is(err, dao.ErrUserNotFound) {
		return model.User{}, ident, errs.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, ident, err
	}
	return user, ident, nil
}
