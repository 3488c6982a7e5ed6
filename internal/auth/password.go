package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hray3182/todolist/internal/models"
	"github.com/hray3182/todolist/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// UserLookup is the part of the user store that login needs.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the username does not exist so that
// unknown users and wrong passwords take about the same time.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return string(hash)
})

// Authenticate returns the user when username and password match, and
// ErrInvalidCredentials when either is wrong.
func Authenticate(ctx context.Context, users UserLookup, username, password string) (*models.User, error) {
	// No stored username can hold these, and Postgres rejects them in a
	// query parameter.
	if !utf8.ValidString(username) || strings.ContainsRune(username, 0) {
		CheckPassword(dummyHash(), password)
		return nil, ErrInvalidCredentials
	}
	user, err := users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		CheckPassword(dummyHash(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
