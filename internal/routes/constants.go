package routes

var (
	RegisterDurationSecondsBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	LoginDurationSecondsBuckets    = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

const (
	// API route constants
	MetricsRouteAPI          = "/metrics"
	UserRegisterRouteAPI     = "/api/users/register"
	UserLoginRouteAPI        = "/api/users/login"
	AdminRegisterRouteAPI    = "/api/admins/register"
	AdminLoginRouteAPI       = "/api/admins/login"
	AssignmentUploadRouteAPI = "/api/assignments/upload"
	AssignmentListRouteAPI   = "/api/assignments"
	AssignmentAcceptRouteAPI = "/api/assignments/{id}/accept"
	AssignmentRejectRouteAPI = "/api/assignments/{id}/reject"

	// Content-Type constants
	ContentType     = "Content-Type"
	ContentTypeJson = "application/json"

	// message constants
	MsgUserRegistered     = "User registered successfully"
	MsgAdminRegistered    = "Admin registered successfully"
	MsgAssignmentUploaded = "Assignment uploaded successfully"
	MsgAssignmentAccepted = "Assignment accepted"
	MsgAssignmentRejected = "Assignment rejected"

	// Error messages
	ErrMethodNotAllowed      = "Method not allowed"
	ErrInvalidContentType    = "Content-Type must be application/json"
	ErrInvalidRequestBody    = "Invalid request body"
	ErrValidationFailed      = "Request data validation failed"
	ErrRegisterUser          = "Error registering user"
	ErrRegisterAdmin         = "Error registering admin"
	ErrLogin                 = "Login error"
	ErrUserNotFound          = "User not found"
	ErrAdminNotFound         = "Admin not found"
	ErrInvalidCredentials    = "Invalid credentials"
	ErrFailedToGenerateToken = "Failed to generate token"
	ErrUploadAssignment      = "Error uploading assignment"
	ErrFetchAssignments      = "Error fetching assignments"
	ErrAcceptAssignment      = "Error accepting assignment"
	ErrRejectAssignment      = "Error rejecting assignment"
	ErrAssignmentNotFound    = "Assignment not found"
	ErrEncodeResponse        = "Failed to encode response"

	// metrics constants
	RegisterRequestsTotal       = "register_requests_total"
	RegisterRequestsTotalHelp   = "Total number of registration requests received, by principal kind"
	RegisterErrorsTotal         = "register_errors_total"
	RegisterErrorsTotalHelp     = "Total number of failed registration requests, by principal kind"
	LoginRequestsTotal          = "login_requests_total"
	LoginRequestsTotalHelp      = "Total number of login requests received, by principal kind"
	LoginSuccessTotal           = "login_success_total"
	LoginSuccessTotalHelp       = "Total number of successful login requests, by principal kind"
	LoginFailedTotal            = "login_failed_total"
	LoginFailedTotalHelp        = "Total number of failed login requests, by principal kind"
	LoginDurationSeconds        = "login_duration_seconds"
	LoginDurationSecondsHelp    = "Duration of login requests in seconds"
	RegisterDurationSeconds     = "register_duration_seconds"
	RegisterDurationSecondsHelp = "Duration of registration requests in seconds"
	UploadRequestsTotal         = "assignment_upload_requests_total"
	UploadRequestsTotalHelp     = "Total number of assignment upload requests received"
	UploadErrorsTotal           = "assignment_upload_errors_total"
	UploadErrorsTotalHelp       = "Total number of failed assignment uploads"
	ListRequestsTotal           = "assignment_list_requests_total"
	ListRequestsTotalHelp       = "Total number of assignment list requests received"
	ReviewRequestsTotal         = "assignment_review_requests_total"
	ReviewRequestsTotalHelp     = "Total number of accept/reject requests received, by action"
	ReviewErrorsTotal           = "assignment_review_errors_total"
	ReviewErrorsTotalHelp       = "Total number of failed accept/reject requests, by action"
	LoginRateLimitedTotal       = "login_rate_limited_total"
	LoginRateLimitedTotalHelp   = "Total number of login requests that were rate limited"

	// metric label names/values
	KindLabel    = "kind"
	ActionLabel  = "action"
	ActionAccept = "accept"
	ActionReject = "reject"
)
