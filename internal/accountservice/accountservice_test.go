package accountservice

import (
	"context"
	"errors"
	"testing"

	"github.com/haguru/kakashi/internal/interfaces/mocks"
	"github.com/haguru/kakashi/internal/models"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestAccountService_Register(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		repoID   string
		repoErr  error
		wantID   string
		wantErr  bool
	}{
		{
			name:     "Successful registration",
			username: "naruto",
			password: "rasengan",
			repoID:   "64f1d2a4c3b2a1908f7e6d5c",
			wantID:   "64f1d2a4c3b2a1908f7e6d5c",
			wantErr:  false,
		},
		{
			name:     "Duplicate username",
			username: "naruto",
			password: "rasengan",
			repoErr:  errors.New("username already exists"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockPrincipalRepository(t)
			repo.On("AddPrincipal", mock.Anything, mock.MatchedBy(func(p models.Principal) bool {
				if p.Username != tt.username {
					return false
				}
				// The service must never store the plaintext password.
				return bcrypt.CompareHashAndPassword([]byte(p.HashedPassword), []byte(tt.password)) == nil
			})).Return(tt.repoID, tt.repoErr)

			svc := NewAccountService(repo, mocks.NopLogger{})

			gotID, err := svc.Register(context.Background(), tt.username, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if gotID != tt.wantID {
				t.Errorf("Register() = %v, want %v", gotID, tt.wantID)
			}
		})
	}
}

func TestAccountService_Authenticate(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("rasengan"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	storedPrincipal := &models.Principal{
		ID:             "64f1d2a4c3b2a1908f7e6d5c",
		Username:       "naruto",
		HashedPassword: string(hashed),
	}

	tests := []struct {
		name          string
		username      string
		password      string
		repoPrincipal *models.Principal
		repoErr       error
		wantID        string
		wantErr       error
		wantAnyErr    bool
	}{
		{
			name:          "Successful authentication",
			username:      "naruto",
			password:      "rasengan",
			repoPrincipal: storedPrincipal,
			wantID:        "64f1d2a4c3b2a1908f7e6d5c",
		},
		{
			name:     "Unknown username",
			username: "sasuke",
			password: "rasengan",
			wantErr:  ErrUnknownUsername,
		},
		{
			name:          "Wrong password",
			username:      "naruto",
			password:      "chidori",
			repoPrincipal: storedPrincipal,
			wantErr:       ErrInvalidCredentials,
		},
		{
			name:       "Repository failure",
			username:   "naruto",
			password:   "rasengan",
			repoErr:    errors.New("connection refused"),
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockPrincipalRepository(t)
			repo.On("GetPrincipalByUsername", mock.Anything, tt.username).
				Return(tt.repoPrincipal, tt.repoErr)

			svc := NewAccountService(repo, mocks.NopLogger{})

			gotID, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantAnyErr {
				if err == nil {
					t.Error("Authenticate() expected an error, got nil")
				}
				if errors.Is(err, ErrUnknownUsername) || errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("Authenticate() repository failure must not map to a credential error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Authenticate() unexpected error = %v", err)
				return
			}
			if gotID != tt.wantID {
				t.Errorf("Authenticate() = %v, want %v", gotID, tt.wantID)
			}
		})
	}
}
