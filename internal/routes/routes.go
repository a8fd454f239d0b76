package routes

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/haguru/kakashi/internal/accountservice"
	"github.com/haguru/kakashi/internal/assignmentservice"
	"github.com/haguru/kakashi/internal/auth"
	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/middleware"
	"github.com/haguru/kakashi/internal/models"
	"github.com/haguru/kakashi/internal/models/dto"

	structValidator "github.com/go-playground/validator/v10"
)

// Route holds the handler dependencies. Registration and login exist once
// per principal namespace; the assignment handlers sit behind the auth gate.
type Route struct {
	Metrics       interfaces.Metrics
	UserAccounts  interfaces.AccountService
	AdminAccounts interfaces.AccountService
	Assignments   *assignmentservice.AssignmentService
	PrivateKey    *ecdsa.PrivateKey
	Logger        interfaces.Logger
	validator     *structValidator.Validate
}

// NewRoute creates a new Route instance.
func NewRoute(metrics interfaces.Metrics, userAccounts, adminAccounts interfaces.AccountService,
	assignments *assignmentservice.AssignmentService, privateKey *ecdsa.PrivateKey,
	validator *structValidator.Validate, logger interfaces.Logger,
) *Route {
	return &Route{
		Metrics:       metrics,
		UserAccounts:  userAccounts,
		AdminAccounts: adminAccounts,
		Assignments:   assignments,
		PrivateKey:    privateKey,
		Logger:        logger,
		validator:     validator,
	}
}

// UserRegister handles user registration requests.
func (r *Route) UserRegister(w http.ResponseWriter, req *http.Request) {
	r.register(w, req, r.UserAccounts, models.RoleUser, MsgUserRegistered, ErrRegisterUser)
}

// AdminRegister handles admin registration requests.
func (r *Route) AdminRegister(w http.ResponseWriter, req *http.Request) {
	r.register(w, req, r.AdminAccounts, models.RoleAdmin, MsgAdminRegistered, ErrRegisterAdmin)
}

// UserLogin handles user login requests.
func (r *Route) UserLogin(w http.ResponseWriter, req *http.Request) {
	r.login(w, req, r.UserAccounts, models.RoleUser, ErrUserNotFound)
}

// AdminLogin handles admin login requests.
func (r *Route) AdminLogin(w http.ResponseWriter, req *http.Request) {
	r.login(w, req, r.AdminAccounts, models.RoleAdmin, ErrAdminNotFound)
}

func (r *Route) register(w http.ResponseWriter, req *http.Request, accounts interfaces.AccountService,
	kind models.Role, successMsg, failureMsg string,
) {
	if req.Method != http.MethodPost {
		r.errorResponse(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounterVec(RegisterRequestsTotal, string(kind))
	}

	registerRequest := &dto.RegisterRequestDTO{}
	if !r.decodeBody(w, req, registerRequest, RegisterErrorsTotal, string(kind)) {
		return
	}

	startTime := time.Now()

	_, err := accounts.Register(req.Context(), registerRequest.Username, registerRequest.Password)
	if err != nil {
		// Duplicate usernames and store failures are indistinguishable to
		// the caller; detail stays in the logs.
		r.errorResponse(w, http.StatusBadRequest, failureMsg)
		if r.Metrics != nil {
			r.Metrics.IncCounterVec(RegisterErrorsTotal, string(kind))
		}
		return
	}

	if r.Metrics != nil {
		r.Metrics.ObserveHistogram(RegisterDurationSeconds, time.Since(startTime).Seconds())
	}

	r.jsonResponse(w, http.StatusCreated, dto.MessageResponseDTO{Message: successMsg})
}

func (r *Route) login(w http.ResponseWriter, req *http.Request, accounts interfaces.AccountService,
	kind models.Role, notFoundMsg string,
) {
	if req.Method != http.MethodPost {
		r.errorResponse(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounterVec(LoginRequestsTotal, string(kind))
	}

	loginRequest := &dto.LoginRequestDTO{}
	if !r.decodeBody(w, req, loginRequest, LoginFailedTotal, string(kind)) {
		return
	}

	startTime := time.Now()

	principalID, err := accounts.Authenticate(req.Context(), loginRequest.Username, loginRequest.Password)
	if r.Metrics != nil {
		r.Metrics.ObserveHistogram(LoginDurationSeconds, time.Since(startTime).Seconds())
	}
	if err != nil {
		if r.Metrics != nil {
			r.Metrics.IncCounterVec(LoginFailedTotal, string(kind))
		}
		switch {
		case errors.Is(err, accountservice.ErrUnknownUsername):
			r.errorResponse(w, http.StatusNotFound, notFoundMsg)
		case errors.Is(err, accountservice.ErrInvalidCredentials):
			r.errorResponse(w, http.StatusBadRequest, ErrInvalidCredentials)
		default:
			r.errorResponse(w, http.StatusBadRequest, ErrLogin)
		}
		return
	}

	token, err := auth.CreateToken(principalID, kind, r.PrivateKey)
	if err != nil {
		r.Logger.Error(ErrFailedToGenerateToken, "kind", kind, "error", err)
		r.errorResponse(w, http.StatusInternalServerError, ErrFailedToGenerateToken)
		if r.Metrics != nil {
			r.Metrics.IncCounterVec(LoginFailedTotal, string(kind))
		}
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounterVec(LoginSuccessTotal, string(kind))
	}

	r.jsonResponse(w, http.StatusOK, dto.LoginResponseDTO{Token: token})
}

// UploadAssignment handles assignment submissions. The route sits behind the
// user gate; the owner id comes from the token claims, never the body.
func (r *Route) UploadAssignment(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.errorResponse(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounter(UploadRequestsTotal)
	}

	claims := middleware.ClaimsFromContext(req.Context())
	if claims == nil {
		r.errorResponse(w, http.StatusForbidden, middleware.MsgAccessDenied)
		return
	}

	uploadRequest := &dto.UploadAssignmentRequestDTO{}
	if !r.decodeBody(w, req, uploadRequest, UploadErrorsTotal) {
		return
	}

	_, err := r.Assignments.Create(req.Context(), claims.PrincipalID, uploadRequest.Task, uploadRequest.Admin)
	if err != nil {
		r.errorResponse(w, http.StatusBadRequest, ErrUploadAssignment)
		if r.Metrics != nil {
			r.Metrics.IncCounter(UploadErrorsTotal)
		}
		return
	}

	r.jsonResponse(w, http.StatusCreated, dto.MessageResponseDTO{Message: MsgAssignmentUploaded})
}

// ListAssignments returns all assignments addressed to the authenticated admin.
func (r *Route) ListAssignments(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.errorResponse(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounter(ListRequestsTotal)
	}

	claims := middleware.ClaimsFromContext(req.Context())
	if claims == nil {
		r.errorResponse(w, http.StatusForbidden, middleware.MsgAccessDenied)
		return
	}

	assignments, err := r.Assignments.ListForAdmin(req.Context(), claims.PrincipalID)
	if err != nil {
		r.errorResponse(w, http.StatusBadRequest, ErrFetchAssignments)
		return
	}

	r.jsonResponse(w, http.StatusOK, assignments)
}

// AcceptAssignment moves an assignment to Accepted.
func (r *Route) AcceptAssignment(w http.ResponseWriter, req *http.Request) {
	r.review(w, req, ActionAccept, MsgAssignmentAccepted, ErrAcceptAssignment, r.Assignments.Accept)
}

// RejectAssignment moves an assignment to Rejected.
func (r *Route) RejectAssignment(w http.ResponseWriter, req *http.Request) {
	r.review(w, req, ActionReject, MsgAssignmentRejected, ErrRejectAssignment, r.Assignments.Reject)
}

func (r *Route) review(w http.ResponseWriter, req *http.Request, action, successMsg, failureMsg string,
	transition func(ctx context.Context, id, callerAdminID string) (*models.Assignment, error),
) {
	if req.Method != http.MethodPost {
		r.errorResponse(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounterVec(ReviewRequestsTotal, action)
	}

	claims := middleware.ClaimsFromContext(req.Context())
	if claims == nil {
		r.errorResponse(w, http.StatusForbidden, middleware.MsgAccessDenied)
		return
	}

	id := req.PathValue("id")

	_, err := transition(req.Context(), id, claims.PrincipalID)
	if err != nil {
		if r.Metrics != nil {
			r.Metrics.IncCounterVec(ReviewErrorsTotal, action)
		}
		switch {
		case errors.Is(err, assignmentservice.ErrNotFound):
			r.errorResponse(w, http.StatusNotFound, ErrAssignmentNotFound)
		case errors.Is(err, assignmentservice.ErrNotAssignedAdmin):
			r.errorResponse(w, http.StatusForbidden, failureMsg)
		default:
			r.errorResponse(w, http.StatusBadRequest, failureMsg)
		}
		return
	}

	r.jsonResponse(w, http.StatusOK, dto.MessageResponseDTO{Message: successMsg})
}

// decodeBody enforces the JSON content type, decodes the body, and runs
// struct validation. On failure it writes the 400 response, bumps the given
// error counter, and reports false.
func (r *Route) decodeBody(w http.ResponseWriter, req *http.Request, v interface{}, errCounter string, labels ...string) bool {
	if req.Header.Get(ContentType) != ContentTypeJson {
		r.errorResponse(w, http.StatusBadRequest, ErrInvalidContentType)
		r.incError(errCounter, labels...)
		return false
	}

	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		r.errorResponse(w, http.StatusBadRequest, ErrInvalidRequestBody)
		r.incError(errCounter, labels...)
		return false
	}

	if err := r.validator.Struct(v); err != nil {
		r.Logger.Debug(ErrValidationFailed, "error", err)
		r.errorResponse(w, http.StatusBadRequest, ErrValidationFailed)
		r.incError(errCounter, labels...)
		return false
	}

	return true
}

func (r *Route) incError(name string, labels ...string) {
	if r.Metrics == nil {
		return
	}
	if len(labels) > 0 {
		r.Metrics.IncCounterVec(name, labels...)
		return
	}
	r.Metrics.IncCounter(name)
}

func (r *Route) jsonResponse(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set(ContentType, ContentTypeJson)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		r.Logger.Error(ErrEncodeResponse, "error", err)
	}
}

func (r *Route) errorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set(ContentType, ContentTypeJson)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.MessageResponseDTO{Message: message})
}
