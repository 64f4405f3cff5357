// Package services contains server-side business logic. UserService is the
// authenticator: it registers users, verifies credentials and issues access
// tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/cmsauth/internal/common"
	"github.com/dmitrijs2005/cmsauth/internal/logging"
	"github.com/dmitrijs2005/cmsauth/internal/server/models"
	"github.com/dmitrijs2005/cmsauth/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	maxUserNameLength = 64
	minPasswordLength = 8
	maxPasswordLength = 1024
)

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) (bool, error)
}

// TokenIssuer mints access tokens.
type TokenIssuer interface {
	Issue(userID, role string, now time.Time) (string, time.Time, error)
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

type registration struct {
	UserName string `validate:"required,max=64,username"`
	Email    string `validate:"required,email"`
	Password string `validate:"password"`
}

type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        PasswordHasher
	tokens        TokenIssuer
	logger        logging.Logger
	validate      *validator.Validate
	storeTimeout  time.Duration
	defaultRole   string
	now           func() time.Time
	referenceHash string
}

type UserServiceOption func(*UserService)

func WithLogger(l logging.Logger) UserServiceOption {
	return func(s *UserService) { s.logger = l }
}

func WithClock(now func() time.Time) UserServiceOption {
	return func(s *UserService) { s.now = now }
}

func WithStoreTimeout(d time.Duration) UserServiceOption {
	return func(s *UserService) { s.storeTimeout = d }
}

func WithDefaultRole(role string) UserServiceOption {
	return func(s *UserService) { s.defaultRole = role }
}

// NewUserService builds the authenticator. It hashes a random password once
// so that logins for unknown users can spend the same verification work as
// logins for known ones.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer, opts ...UserServiceOption) (*UserService, error) {
	s := &UserService{
		db:           db,
		repomanager:  m,
		hasher:       hasher,
		tokens:       tokens,
		logger:       logging.Nop(),
		validate:     newValidator(),
		storeTimeout: 5 * time.Second,
		defaultRole:  "author",
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	ref, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("reference password: %w", err)
	}
	s.referenceHash, err = hasher.Hash(ref)
	if err != nil {
		return nil, fmt.Errorf("reference hash: %w", err)
	}

	s.logger = s.logger.With("module", "users")
	return s, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return strings.TrimSpace(name) != "" && strings.IndexFunc(name, unicode.IsSpace) < 0
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		n := len(fl.Field().String())
		return n >= minPasswordLength && n <= maxPasswordLength
	})
	return v
}

// mustRegister panics if tag cannot be registered; that is a programming
// error, not a runtime condition.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func (s *UserService) validateRegistration(r registration) error {
	err := s.validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", common.ErrInvalidData, err)
	}

	fe := verrs[0]
	switch fe.Field() {
	case "UserName":
		return fmt.Errorf("%w: username must be 1-%d characters without whitespace", common.ErrInvalidData, maxUserNameLength)
	case "Email":
		return fmt.Errorf("%w: email must be a valid address", common.ErrInvalidData)
	case "Password":
		return fmt.Errorf("%w: password must be %d-%d bytes", common.ErrInvalidData, minPasswordLength, maxPasswordLength)
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidData, fe.Field())
}

// store runs fn against the users repository under the store timeout.
func (s *UserService) store(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return fn(ctx)
}

func (s *UserService) storeFailure(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, "credential store failure", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", common.ErrStoreFailure, op, err)
}

// Register creates a user with the default role. A taken username yields
// common.ErrUserAlreadyExists whether it is caught by the lookup or by the
// store's uniqueness constraint.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := s.validateRegistration(registration{UserName: username, Email: email, Password: password}); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	err := s.store(ctx, func(ctx context.Context) error {
		_, err := repo.GetUserByLogin(ctx, username)
		return err
	})
	switch {
	case err == nil:
		return nil, common.ErrUserAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.storeFailure(ctx, "lookup", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         s.defaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var created *models.User
	err = s.store(ctx, func(ctx context.Context) error {
		var err error
		created, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrUserAlreadyExists
		}
		return nil, s.storeFailure(ctx, "create", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Login checks the credentials and issues a token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*Token, error) {
	if username == "" || password == "" || len(password) > maxPasswordLength {
		// Overlong input is never hashed; everything else pays for one verify.
		if len(password) <= maxPasswordLength {
			_, _ = s.hasher.Verify(password, s.referenceHash)
		}
		return nil, common.ErrInvalidCredentials
	}

	repo := s.repomanager.Users(s.db)

	var user *models.User
	err := s.store(ctx, func(ctx context.Context) error {
		var err error
		user, err = repo.GetUserByLogin(ctx, username)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Verify(password, s.referenceHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.storeFailure(ctx, "lookup", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unusable", "user_id", user.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	access, expiresAt, err := s.tokens.Issue(user.ID, user.Role, s.now())
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Token{AccessToken: access, ExpiresAt: expiresAt}, nil
}

// CurrentUser resolves an authenticated identity to its record. A token that
// outlived its user is reported as common.ErrInvalidCredentials.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	var user *models.User
	err := s.store(ctx, func(ctx context.Context) error {
		var err error
		user, err = repo.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.storeFailure(ctx, "get by id", err)
	}
	return user, nil
}
