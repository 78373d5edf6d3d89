// Package session issues and validates stateless session tokens.
//
// A token is an HMAC-signed JWT whose secret is the user's current password
// hash. Replacing the hash (a password change) therefore invalidates every
// token issued before it; there is no revocation list.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"user-portal/pkg/common/config"
	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/repository/dao"
	"user-portal/pkg/core/user/validator"
)

const (
	CodeSignFailed   = "TOKEN_SIGN_FAILED"
	CodeLookupFailed = "TOKEN_LOOKUP_FAILED"
)

// HashStore looks up a user's current credential hash.
type HashStore interface {
	GetUserHash(ctx context.Context, id int64) (string, error)
}

// PayloadParser extracts the claimed user id without verifying the token.
type PayloadParser interface {
	TokenUserID(raw any) (int64, error)
}

// Result is the outcome of validating a token. Err is nil only when Logged.
type Result struct {
	Status int
	Logged bool
	UserID int64
	Err    *errs.Error
}

type claims struct {
	UserID int64 `json:"user-id"`
	jwt.RegisteredClaims
}

type Service struct {
	hashes HashStore
	parser PayloadParser
	method *jwt.SigningMethodHMAC
}

func NewService(cfg config.SessionConfig, parser PayloadParser, hashes HashStore) (*Service, error) {
	method, ok := jwt.GetSigningMethod(cfg.SigningMethod).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported session signing method %q", cfg.SigningMethod)
	}
	return &Service{hashes: hashes, parser: parser, method: method}, nil
}

// Issue signs a token for userID with secret, the user's current credential
// hash. Tokens carry no expiry.
func (s *Service) Issue(userID int64, secret string) (string, error) {
	token := jwt.NewWithClaims(s.method, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", oops.Code(CodeSignFailed).With("user_id", userID).Wrap(err)
	}
	return signed, nil
}

// Validate walks a raw token through payload parsing, credential lookup and
// signature verification. The returned error is set only when the credential
// lookup itself failed.
func (s *Service) Validate(ctx context.Context, raw any) (Result, error) {
	userID, err := s.parser.TokenUserID(raw)
	if err != nil {
		return rejected(0, errs.Resolve(err)), nil
	}
	token, _ := raw.(string)

	hash, err := s.hashes.GetUserHash(ctx, userID)
	switch {
	case errors.Is(err, dao.ErrCredentialNotFound):
		return rejected(userID, errs.ErrTokenData), nil
	case err != nil:
		return Result{}, oops.Code(CodeLookupFailed).With("user_id", userID).Wrap(err)
	}

	_, err = jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(hash), nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))

	switch {
	case err == nil:
		return Result{Status: http.StatusOK, Logged: true, UserID: userID}, nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return rejected(userID, errs.ErrTokenSignature), nil
	default:
		hlog.CtxErrorf(ctx, "Failed to verify token user_id=%d: %v", userID, err)
		return rejected(userID, errs.ErrVerifyToken), nil
	}
}

func rejected(userID int64, apiErr *errs.Error) Result {
	return Result{Status: apiErr.Status, UserID: userID, Err: apiErr}
}

var _ PayloadParser = (*validator.Validator)(nil)
