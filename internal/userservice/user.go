package userservice

import (
	"context"
	"errors"

	"github.com/sushihentaime/bloglist/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid username or password")
)

func NewUserService(store Store, tokens *TokenManager) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
	}
}

// CreateUser registers a new account. A taken username yields ErrDuplicateUsername.
func (s *UserService) CreateUser(ctx context.Context, username, name, password string) (*User, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateName(v, name)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	pwd, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := User{
		Username: username,
		Name:     name,
		Password: pwd,
	}

	if err := s.store.InsertUser(ctx, &u); err != nil {
		return nil, err
	}

	return &u, nil
}

// LoginUser checks the credentials and issues a bearer token.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*AuthToken, error) {
	v := common.NewValidator()
	v.Check(username != "", "username", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.matches(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	token, expiry, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthToken{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Expiry:   expiry,
	}, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]User, error) {
	return s.store.GetUsers(ctx)
}

// VerifyToken resolves a bearer token to the caller identity.
func (s *UserService) VerifyToken(token string) (*Identity, error) {
	return s.tokens.Verify(token)
}
