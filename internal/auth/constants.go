package auth

const (
	headerAuthorization = "Authorization"
	SessionCookieName   = "mediaflow_session"
	QueryParamToken     = "token"
	PathParamToken      = "token"

	contextKeySessionCookie = "session_from_cookie"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	pathRoot      = "/"
	pathDashboard = "/dashboard"
)

const (
	msgAuthenticationRequired  = "Authentication required"
	msgAdminRequired           = "Admin access required"
	msgPermissionDenied        = "Insufficient permissions"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgInvalidSubjectFmt       = "invalid token subject: %w"
)
