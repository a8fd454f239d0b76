package routes

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/haguru/kakashi/internal/accountservice"
	"github.com/haguru/kakashi/internal/assignmentservice"
	"github.com/haguru/kakashi/internal/auth"
	"github.com/haguru/kakashi/internal/interfaces/mocks"
	"github.com/haguru/kakashi/internal/middleware"
	"github.com/haguru/kakashi/internal/models"
	"github.com/haguru/kakashi/internal/models/dto"

	structValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

var testPrivateKey *ecdsa.PrivateKey

func TestMain(m *testing.M) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("Failed to generate ECDSA key: %v", err)
	}
	testPrivateKey = key

	os.Exit(m.Run())
}

type testRepos struct {
	users       *mocks.MockPrincipalRepository
	admins      *mocks.MockPrincipalRepository
	assignments *mocks.MockAssignmentRepository
}

func newTestRoute(t *testing.T) (*Route, testRepos) {
	t.Helper()

	repos := testRepos{
		users:       mocks.NewMockPrincipalRepository(t),
		admins:      mocks.NewMockPrincipalRepository(t),
		assignments: mocks.NewMockAssignmentRepository(t),
	}

	logger := mocks.NopLogger{}
	userAccounts := accountservice.NewAccountService(repos.users, logger)
	adminAccounts := accountservice.NewAccountService(repos.admins, logger)
	assignments := assignmentservice.NewAssignmentService(repos.assignments, logger, assignmentservice.Options{})

	route := NewRoute(nil, userAccounts, adminAccounts, assignments,
		testPrivateKey, structValidator.New(), logger)

	return route, repos
}

// withClaims attaches gate claims the way the auth middleware does.
func withClaims(req *http.Request, principalID string, role models.Role) *http.Request {
	claims := &auth.CustomClaims{PrincipalID: principalID, Role: role}
	ctx := context.WithValue(req.Context(), middleware.ClaimsContextKey, claims)
	return req.WithContext(ctx)
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.MessageResponseDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return resp.Message
}

func TestRoute_UserRegister(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		contentType    string
		body           string
		repoErr        error
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "Valid registration",
			method:         http.MethodPost,
			contentType:    ContentTypeJson,
			body:           `{"username":"naruto","password":"rasengan"}`,
			wantStatusCode: http.StatusCreated,
			wantMessage:    MsgUserRegistered,
		},
		{
			name:           "Invalid method",
			method:         http.MethodGet,
			contentType:    ContentTypeJson,
			body:           "",
			wantStatusCode: http.StatusMethodNotAllowed,
			wantMessage:    ErrMethodNotAllowed,
		},
		{
			name:           "Missing Content-Type",
			method:         http.MethodPost,
			contentType:    "",
			body:           `{"username":"naruto","password":"rasengan"}`,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    ErrInvalidContentType,
		},
		{
			name:           "Invalid JSON body",
			method:         http.MethodPost,
			contentType:    ContentTypeJson,
			body:           `{"username":"naruto""password":"rasengan"}`,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    ErrInvalidRequestBody,
		},
		{
			name:           "Missing password fails validation",
			method:         http.MethodPost,
			contentType:    ContentTypeJson,
			body:           `{"username":"naruto"}`,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    ErrValidationFailed,
		},
		{
			name:           "Duplicate username",
			method:         http.MethodPost,
			contentType:    ContentTypeJson,
			body:           `{"username":"naruto","password":"rasengan"}`,
			repoErr:        errors.New("username already exists"),
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    ErrRegisterUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, repos := newTestRoute(t)
			repos.users.On("AddPrincipal", mock.Anything, mock.AnythingOfType("models.Principal")).
				Return("64f1d2a4c3b2a1908f7e6d5c", tt.repoErr).Maybe()

			req := httptest.NewRequest(tt.method, UserRegisterRouteAPI, bytes.NewBufferString(tt.body))
			if tt.contentType != "" {
				req.Header.Set(ContentType, tt.contentType)
			}
			rr := httptest.NewRecorder()

			route.UserRegister(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatusCode)
			}
			if got := decodeMessage(t, rr); got != tt.wantMessage {
				t.Errorf("got message %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestRoute_UserLogin(t *testing.T) {
	const userID = "64f1d2a4c3b2a1908f7e6d5c"

	hashed, err := bcrypt.GenerateFromPassword([]byte("rasengan"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	storedUser := &models.Principal{
		ID:             userID,
		Username:       "naruto",
		HashedPassword: string(hashed),
	}

	tests := []struct {
		name           string
		body           string
		repoPrincipal  *models.Principal
		wantStatusCode int
		wantMessage    string
		wantToken      bool
	}{
		{
			name:           "Valid login returns a verifiable token",
			body:           `{"username":"naruto","password":"rasengan"}`,
			repoPrincipal:  storedUser,
			wantStatusCode: http.StatusOK,
			wantToken:      true,
		},
		{
			name:           "Unknown username",
			body:           `{"username":"sasuke","password":"rasengan"}`,
			repoPrincipal:  nil,
			wantStatusCode: http.StatusNotFound,
			wantMessage:    ErrUserNotFound,
		},
		{
			name:           "Wrong password",
			body:           `{"username":"naruto","password":"chidori"}`,
			repoPrincipal:  storedUser,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, repos := newTestRoute(t)
			repos.users.On("GetPrincipalByUsername", mock.Anything, mock.AnythingOfType("string")).
				Return(tt.repoPrincipal, nil)

			req := httptest.NewRequest(http.MethodPost, UserLoginRouteAPI, bytes.NewBufferString(tt.body))
			req.Header.Set(ContentType, ContentTypeJson)
			rr := httptest.NewRecorder()

			route.UserLogin(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatusCode)
			}

			if tt.wantToken {
				var resp dto.LoginResponseDTO
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode login response: %v", err)
				}
				claims, err := auth.VerifyToken(resp.Token, &testPrivateKey.PublicKey)
				if err != nil {
					t.Fatalf("Returned token failed verification: %v", err)
				}
				if claims.PrincipalID != userID {
					t.Errorf("token PrincipalID = %q, want %q", claims.PrincipalID, userID)
				}
				if claims.Role != models.RoleUser {
					t.Errorf("token Role = %q, want %q", claims.Role, models.RoleUser)
				}
				return
			}
			if got := decodeMessage(t, rr); got != tt.wantMessage {
				t.Errorf("got message %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestRoute_AdminLogin(t *testing.T) {
	const adminID = "64f1d2a4c3b2a1908f7e6d5d"

	hashed, err := bcrypt.GenerateFromPassword([]byte("sharingan"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	route, repos := newTestRoute(t)
	repos.admins.On("GetPrincipalByUsername", mock.Anything, "kakashi").
		Return(&models.Principal{ID: adminID, Username: "kakashi", HashedPassword: string(hashed)}, nil)

	body := `{"username":"kakashi","password":"sharingan"}`
	req := httptest.NewRequest(http.MethodPost, AdminLoginRouteAPI, bytes.NewBufferString(body))
	req.Header.Set(ContentType, ContentTypeJson)
	rr := httptest.NewRecorder()

	route.AdminLogin(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	var resp dto.LoginResponseDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	claims, err := auth.VerifyToken(resp.Token, &testPrivateKey.PublicKey)
	if err != nil {
		t.Fatalf("Returned token failed verification: %v", err)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("token Role = %q, want %q", claims.Role, models.RoleAdmin)
	}
}

func TestRoute_UploadAssignment(t *testing.T) {
	const userID = "64f1d2a4c3b2a1908f7e6d5c"

	tests := []struct {
		name           string
		withClaims     bool
		body           string
		repoErr        error
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "Valid upload",
			withClaims:     true,
			body:           `{"task":"write the report","admin":"64f1d2a4c3b2a1908f7e6d5d"}`,
			wantStatusCode: http.StatusCreated,
			wantMessage:    MsgAssignmentUploaded,
		},
		{
			name:           "No gate claims",
			withClaims:     false,
			body:           `{"task":"write the report","admin":"64f1d2a4c3b2a1908f7e6d5d"}`,
			wantStatusCode: http.StatusForbidden,
			wantMessage:    middleware.MsgAccessDenied,
		},
		{
			name:           "Missing task fails validation",
			withClaims:     true,
			body:           `{"admin":"64f1d2a4c3b2a1908f7e6d5d"}`,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    ErrValidationFailed,
		},
		{
			name:           "Store failure",
			withClaims:     true,
			body:           `{"task":"write the report","admin":"64f1d2a4c3b2a1908f7e6d5d"}`,
			repoErr:        errors.New("connection refused"),
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    ErrUploadAssignment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, repos := newTestRoute(t)
			// The owner id must come from the token claims, not the body.
			repos.assignments.On("AddAssignment", mock.Anything, mock.MatchedBy(func(a models.Assignment) bool {
				return a.UserID == userID && a.Status == models.StatusPending
			})).Return("a1", tt.repoErr).Maybe()

			req := httptest.NewRequest(http.MethodPost, AssignmentUploadRouteAPI, bytes.NewBufferString(tt.body))
			req.Header.Set(ContentType, ContentTypeJson)
			if tt.withClaims {
				req = withClaims(req, userID, models.RoleUser)
			}
			rr := httptest.NewRecorder()

			route.UploadAssignment(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatusCode)
			}
			if got := decodeMessage(t, rr); got != tt.wantMessage {
				t.Errorf("got message %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestRoute_ListAssignments(t *testing.T) {
	const adminID = "64f1d2a4c3b2a1908f7e6d5d"

	stored := []models.Assignment{
		{
			ID:       "a1",
			UserID:   "64f1d2a4c3b2a1908f7e6d5c",
			Task:     "write the report",
			Admin:    adminID,
			Status:   models.StatusPending,
			DateTime: time.Now().UTC(),
		},
		{
			ID:       "a2",
			UserID:   "64f1d2a4c3b2a1908f7e6d5c",
			Task:     "review the budget",
			Admin:    adminID,
			Status:   models.StatusAccepted,
			DateTime: time.Now().UTC(),
		},
	}

	t.Run("Returns the admin's assignments", func(t *testing.T) {
		route, repos := newTestRoute(t)
		repos.assignments.On("ListByAdmin", mock.Anything, adminID).Return(stored, nil)

		req := withClaims(httptest.NewRequest(http.MethodGet, AssignmentListRouteAPI, nil),
			adminID, models.RoleAdmin)
		rr := httptest.NewRecorder()

		route.ListAssignments(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}
		var got []models.Assignment
		if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode response body: %v", err)
		}
		if len(got) != len(stored) {
			t.Fatalf("got %d assignments, want %d", len(got), len(stored))
		}
		for i := range got {
			if got[i].ID != stored[i].ID || got[i].Status != stored[i].Status {
				t.Errorf("assignment %d = %+v, want %+v", i, got[i], stored[i])
			}
		}
	})

	t.Run("No gate claims", func(t *testing.T) {
		route, _ := newTestRoute(t)

		req := httptest.NewRequest(http.MethodGet, AssignmentListRouteAPI, nil)
		rr := httptest.NewRecorder()

		route.ListAssignments(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusForbidden)
		}
	})

	t.Run("Invalid method", func(t *testing.T) {
		route, _ := newTestRoute(t)

		req := withClaims(httptest.NewRequest(http.MethodPost, AssignmentListRouteAPI, nil),
			adminID, models.RoleAdmin)
		rr := httptest.NewRecorder()

		route.ListAssignments(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusMethodNotAllowed)
		}
	})
}

func TestRoute_ReviewAssignment(t *testing.T) {
	const adminID = "64f1d2a4c3b2a1908f7e6d5d"

	pending := &models.Assignment{
		ID:       "a1",
		UserID:   "64f1d2a4c3b2a1908f7e6d5c",
		Task:     "write the report",
		Admin:    adminID,
		Status:   models.StatusPending,
		DateTime: time.Now().UTC(),
	}

	tests := []struct {
		name           string
		handler        func(route *Route) http.HandlerFunc
		assignmentID   string
		stored         *models.Assignment
		wantStatus     models.Status
		wantStatusCode int
		wantMessage    string
	}{
		{
			name:           "Accept a pending assignment",
			handler:        func(route *Route) http.HandlerFunc { return route.AcceptAssignment },
			assignmentID:   "a1",
			stored:         pending,
			wantStatus:     models.StatusAccepted,
			wantStatusCode: http.StatusOK,
			wantMessage:    MsgAssignmentAccepted,
		},
		{
			name:           "Reject a pending assignment",
			handler:        func(route *Route) http.HandlerFunc { return route.RejectAssignment },
			assignmentID:   "a1",
			stored:         pending,
			wantStatus:     models.StatusRejected,
			wantStatusCode: http.StatusOK,
			wantMessage:    MsgAssignmentRejected,
		},
		{
			name:           "Accept an unknown assignment",
			handler:        func(route *Route) http.HandlerFunc { return route.AcceptAssignment },
			assignmentID:   "missing",
			stored:         nil,
			wantStatusCode: http.StatusNotFound,
			wantMessage:    ErrAssignmentNotFound,
		},
		{
			name:           "Reject an unknown assignment",
			handler:        func(route *Route) http.HandlerFunc { return route.RejectAssignment },
			assignmentID:   "missing",
			stored:         nil,
			wantStatusCode: http.StatusNotFound,
			wantMessage:    ErrAssignmentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, repos := newTestRoute(t)
			repos.assignments.On("GetAssignmentByID", mock.Anything, tt.assignmentID).
				Return(tt.stored, nil)
			if tt.stored != nil {
				repos.assignments.On("UpdateStatus", mock.Anything, tt.assignmentID, tt.wantStatus).
					Return(nil)
			}

			target := fmt.Sprintf("/api/assignments/%s/accept", tt.assignmentID)
			req := withClaims(httptest.NewRequest(http.MethodPost, target, nil),
				adminID, models.RoleAdmin)
			req.SetPathValue("id", tt.assignmentID)
			rr := httptest.NewRecorder()

			tt.handler(route)(rr, req)

			if rr.Code != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatusCode)
			}
			if got := decodeMessage(t, rr); got != tt.wantMessage {
				t.Errorf("got message %q, want %q", got, tt.wantMessage)
			}
		})
	}
}
