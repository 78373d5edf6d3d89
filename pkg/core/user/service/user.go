package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/samber/oops"

	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/common/metrics"
	"user-portal/pkg/core/user/credential"
	"user-portal/pkg/core/user/identity"
	"user-portal/pkg/core/user/model"
	"user-portal/pkg/core/user/repository/dao"
	"user-portal/pkg/core/user/session"
	"user-portal/pkg/core/user/validator"
)

// CodeMissingCredential 用户存在但没有对应的密码记录
const CodeMissingCredential = "MISSING_CREDENTIAL"

// Session is a user together with a freshly issued session token.
type Session struct {
	User  model.User
	Token string
}

// UserService 账户业务流程：注册、登录、资料修改、注销
type UserService struct {
	store    dao.Store
	validate *validator.Validator
	resolver *identity.Resolver
	creds    *credential.Manager
	sessions *session.Service
	metrics  *metrics.Metrics
}

func NewUserService(
	store dao.Store,
	v *validator.Validator,
	resolver *identity.Resolver,
	creds *credential.Manager,
	sessions *session.Service,
	m *metrics.Metrics,
) *UserService {
	return &UserService{
		store:    store,
		validate: v,
		resolver: resolver,
		creds:    creds,
		sessions: sessions,
		metrics:  m,
	}
}

// Register creates the user and its credential record together and logs the
// new user in.
func (s *UserService) Register(ctx context.Context, rawUsername, rawEmail, rawPassword any) (Session, error) {
	username, err := s.validate.Username(trim(rawUsername))
	if err != nil {
		return Session{}, err
	}
	email, err := s.validate.Email(rawEmail)
	if err != nil {
		return Session{}, err
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return Session{}, err
	}

	password, err := s.validate.Password(rawPassword)
	if err != nil {
		return Session{}, err
	}

	hash, err := s.creds.Generate(ctx, password)
	if err != nil {
		s.metrics.RecordAuth(metrics.ActionRegister, metrics.ResultError)
		return Session{}, err
	}

	var user model.User
	err = s.store.Transaction(ctx, func(tx dao.Store) error {
		created, err := tx.Users().AddUser(ctx, username, email)
		if err != nil {
			return err
		}
		if _, err := tx.Credentials().AddUserHash(ctx, created.ID, hash); err != nil {
			return err
		}
		user = created
		return nil
	})
	if errors.Is(err, dao.ErrDuplicateEntry) {
		// 并发注册抢占了用户名或邮箱
		if err := s.checkAvailable(ctx, username, email); err != nil {
			return Session{}, err
		}
		return Session{}, errs.ErrExistingUsername.WithMessage("Username '%s' is already taken", username)
	}
	if err != nil {
		hlog.CtxErrorf(ctx, "Failed to register user username=%s email=%s: %v", username, email, err)
		s.metrics.RecordAuth(metrics.ActionRegister, metrics.ResultError)
		return Session{}, err
	}

	token, err := s.sessions.Issue(user.ID, hash)
	if err != nil {
		return Session{}, err
	}

	hlog.CtxInfof(ctx, "User registered id=%d username=%s", user.ID, user.Username)
	s.metrics.RecordAuth(metrics.ActionRegister, metrics.ResultSuccess)
	return Session{User: user, Token: token}, nil
}

func (s *UserService) checkAvailable(ctx context.Context, username, email string) error {
	users := s.store.Users()

	taken, err := users.HasUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return errs.ErrExistingUsername.WithMessage("Username '%s' is already taken", username)
	}

	taken, err = users.HasEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return errs.ErrExistingEmail.WithMessage("E-mail '%s' is already taken", email)
	}
	return nil
}

// Login accepts an id, username or email together with the password.
func (s *UserService) Login(ctx context.Context, rawUUID, rawPassword any) (Session, error) {
	ident, err := s.resolver.Resolve(trim(rawUUID))
	if err != nil {
		return Session{}, err
	}
	password, err := s.validate.Password(rawPassword)
	if err != nil {
		return Session{}, err
	}

	user, err := s.store.Users().GetUser(ctx, ident)
	if errors.Is(err, dao.ErrUserNotFound) {
		s.metrics.RecordAuth(metrics.ActionLogin, metrics.ResultRejected)
		return Session{}, errs.ErrLoginCredentials
	}
	if err != nil {
		return Session{}, err
	}

	hash, err := s.userHash(ctx, user.ID)
	if err != nil {
		s.metrics.RecordAuth(metrics.ActionLogin, metrics.ResultError)
		return Session{}, err
	}

	ok, err := s.creds.Check(ctx, password, hash)
	if err != nil {
		s.metrics.RecordAuth(metrics.ActionLogin, metrics.ResultError)
		return Session{}, oops.With("user_id", user.ID).Wrap(err)
	}
	if !ok {
		s.metrics.RecordAuth(metrics.ActionLogin, metrics.ResultRejected)
		return Session{}, errs.ErrLoginPassword
	}

	token, err := s.sessions.Issue(user.ID, hash)
	if err != nil {
		return Session{}, err
	}

	s.metrics.RecordAuth(metrics.ActionLogin, metrics.ResultSuccess)
	return Session{User: user, Token: token}, nil
}

// Authenticate validates a raw session token.
func (s *UserService) Authenticate(ctx context.Context, rawToken any) (session.Result, error) {
	res, err := s.sessions.Validate(ctx, rawToken)
	switch {
	case err != nil:
		s.metrics.RecordAuth(metrics.ActionSession, metrics.ResultError)
	case res.Logged:
		s.metrics.RecordAuth(metrics.ActionSession, metrics.ResultSuccess)
	default:
		s.metrics.RecordAuth(metrics.ActionSession, metrics.ResultRejected)
	}
	return res, err
}

// Me returns the full record of the session's own user.
func (s *UserService) Me(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.store.Users().GetUser(ctx, model.IDIdentifier(userID))
	if errors.Is(err, dao.ErrUserNotFound) {
		return model.User{}, errs.ErrUserNotFound
	}
	return user, err
}

// GetPublic returns the public view of any user by id.
func (s *UserService) GetPublic(ctx context.Context, rawID any) (model.PublicUser, error) {
	id, err := s.validate.ID(rawID)
	if err != nil {
		return model.PublicUser{}, errs.ErrInvalidID
	}

	user, err := s.store.Users().GetUser(ctx, model.IDIdentifier(id))
	if errors.Is(err, dao.ErrUserNotFound) {
		return model.PublicUser{}, errs.ErrUserNotFound
	}
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) ChangeUsername(ctx context.Context, userID int64, rawUsername any) (model.User, error) {
	username, err := s.validate.Username(trim(rawUsername))
	if err != nil {
		return model.User{}, err
	}

	current, err := s.Me(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if current.Username == username {
		return model.User{}, errs.ErrSameUsername
	}

	taken, err := s.store.Users().HasUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, errs.ErrExistingUsername.WithMessage("Username '%s' is already taken", username)
	}

	user, err := s.store.Users().ChangeUser(ctx, userID, model.UserChanges{Username: &username})
	if errors.Is(err, dao.ErrDuplicateEntry) {
		return model.User{}, errs.ErrExistingUsername.WithMessage("Username '%s' is already taken", username)
	}
	return user, err
}

func (s *UserService) ChangeEmail(ctx context.Context, userID int64, rawEmail any) (model.User, error) {
	email, err := s.validate.Email(rawEmail)
	if err != nil {
		return model.User{}, err
	}

	current, err := s.Me(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if current.Email == email {
		return model.User{}, errs.ErrSameEmail
	}

	taken, err := s.store.Users().HasEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, errs.ErrExistingEmail.WithMessage("E-mail '%s' is already taken", email)
	}

	user, err := s.store.Users().ChangeUser(ctx, userID, model.UserChanges{Email: &email})
	if errors.Is(err, dao.ErrDuplicateEntry) {
		return model.User{}, errs.ErrExistingEmail.WithMessage("E-mail '%s' is already taken", email)
	}
	return user, err
}

// ChangePassword replaces the credential hash, which invalidates every
// session token issued so far, and returns a token signed with the new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, rawCurrent, rawNext any) (string, error) {
	// 新密码先校验
	next, err := s.validate.Password(rawNext)
	if err != nil {
		return "", err
	}
	current, err := s.validate.Password(rawCurrent)
	if err != nil {
		return "", err
	}

	hash, err := s.userHash(ctx, userID)
	if err != nil {
		return "", err
	}

	ok, err := s.creds.Check(ctx, current, hash)
	if err != nil {
		return "", oops.With("user_id", userID).Wrap(err)
	}
	if !ok {
		s.metrics.RecordAuth(metrics.ActionChangePassword, metrics.ResultRejected)
		return "", errs.ErrWrongPassword
	}

	newHash, err := s.creds.Generate(ctx, next)
	if err != nil {
		return "", err
	}

	if _, err := s.store.Credentials().ChangeUserHash(ctx, userID, newHash); err != nil {
		hlog.CtxErrorf(ctx, "Failed to change password user_id=%d: %v", userID, err)
		s.metrics.RecordAuth(metrics.ActionChangePassword, metrics.ResultError)
		return "", errs.ErrChangePassword
	}

	s.metrics.RecordAuth(metrics.ActionChangePassword, metrics.ResultSuccess)
	return s.sessions.Issue(userID, newHash)
}

// Delete removes the user and its credential record.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	err := s.store.Transaction(ctx, func(tx dao.Store) error {
		if _, err := tx.Users().DeleteUser(ctx, model.IDIdentifier(userID)); err != nil {
			return err
		}
		_, err := tx.Credentials().DeleteUserHash(ctx, userID)
		return err
	})
	if errors.Is(err, dao.ErrUserNotFound) {
		return errs.ErrUserNotFound
	}
	if err == nil {
		hlog.CtxInfof(ctx, "User deleted id=%d", userID)
	}
	return err
}

// CheckIdentifier classifies a login identifier as a username or an email.
// Numeric ids are not accepted here.
func (s *UserService) CheckIdentifier(raw any) (model.IdentifierKind, error) {
	ident, err := s.resolver.Resolve(trim(raw))
	if err != nil {
		return "", err
	}
	if ident.Kind == model.KindID {
		return "", errs.ErrUUIDFormat
	}
	return ident.Kind, nil
}

func (s *UserService) CheckUsername(raw any) error {
	_, err := s.validate.Username(trim(raw))
	return err
}

func (s *UserService) CheckEmail(raw any) error {
	_, err := s.validate.Email(raw)
	return err
}

func (s *UserService) CheckPassword(raw any) error {
	_, err := s.validate.Password(raw)
	return err
}

// Ping reports whether the backing store is reachable.
func (s *UserService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *UserService) userHash(ctx context.Context, userID int64) (string, error) {
	hash, err := s.store.Credentials().GetUserHash(ctx, userID)
	if errors.Is(err, dao.ErrCredentialNotFound) {
		return "", oops.Code(CodeMissingCredential).With("user_id", userID).Wrap(err)
	}
	return hash, err
}

func trim(raw any) any {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return raw
}
