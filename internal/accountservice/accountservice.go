package accountservice

import (
	"context"
	"fmt"

	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/models"
	"github.com/haguru/kakashi/pkg/helper"

	"golang.org/x/crypto/bcrypt"
)

// AccountService registers and authenticates principals for one namespace.
// The app wires two instances, one over the users collection and one over
// the admins collection.
type AccountService struct {
	Repo   interfaces.PrincipalRepository
	Logger interfaces.Logger
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(repo interfaces.PrincipalRepository, logger interfaces.Logger) *AccountService {
	return &AccountService{
		Repo:   repo,
		Logger: logger,
	}
}

// Register hashes the password and adds the principal via the repository.
// A duplicate username fails without mutating the store.
func (s *AccountService) Register(ctx context.Context, username, password string) (string, error) {
	funcName := helper.GetFuncName()
	s.Logger.Info("Registering principal", "func", funcName, "username", username)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.Logger.Error(ErrFailedToHashPassword, "func", funcName, "username", username, "error", err)
		return "", fmt.Errorf("%s: %w", ErrFailedToHashPassword, err)
	}

	principal := models.NewPrincipal(username, string(hashedPassword))

	id, err := s.Repo.AddPrincipal(ctx, *principal)
	if err != nil {
		s.Logger.Error(ErrFailedToRegister, "func", funcName, "username", username, "error", err)
		return "", fmt.Errorf("%s: %w", ErrFailedToRegister, err)
	}

	s.Logger.Info("Principal registered successfully", "func", funcName, "username", username, "id", id)
	return id, nil
}

// Authenticate verifies the credentials and returns the principal's id.
// An unknown username and a wrong password come back as distinct errors so
// the boundary can map them to different status codes.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (string, error) {
	funcName := helper.GetFuncName()

	principal, err := s.Repo.GetPrincipalByUsername(ctx, username)
	if err != nil {
		s.Logger.Error(ErrRetrievingPrincipal, "func", funcName, "username", username, "error", err)
		return "", fmt.Errorf("%s: %w", ErrRetrievingPrincipal, err)
	}
	if principal == nil {
		s.Logger.Debug("Principal not found", "func", funcName, "username", username)
		return "", ErrUnknownUsername
	}

	err = bcrypt.CompareHashAndPassword([]byte(principal.HashedPassword), []byte(password))
	if err != nil {
		s.Logger.Debug("Password mismatch", "func", funcName, "username", username)
		return "", ErrInvalidCredentials
	}

	s.Logger.Info("Principal authenticated successfully", "func", funcName, "username", username)
	return principal.ID, nil
}
