package auth

import (
	"fmt"
	"net/http"
)

// Error is an authentication or authorization failure that maps to one
// HTTP status. Two errors are equal for errors.Is when their codes match,
// so callers compare against the exported sentinels.
type Error struct {
	Status  int
	Code    string
	Message string
	// SubscriptionStatus is set on UPGRADE_REQUIRED so clients can render an upsell.
	SubscriptionStatus string
	// PublicCode replaces Code in responses when the real reason must not leak.
	PublicCode string
}

func (e *Error) Error() string {
	if e.SubscriptionStatus != "" {
		return fmt.Sprintf("%s: %s (subscription_status=%s)", e.Code, e.Message, e.SubscriptionStatus)
	}

	return e.Code + ": " + e.Message
}

// Is matches on the error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// Payload is the JSON body returned to the client.
func (e *Error) Payload() map[string]interface{} {
	code := e.Code
	if e.PublicCode != "" {
		code = e.PublicCode
	}

	out := map[string]interface{}{
		"error":  code,
		"detail": e.Message,
	}

	if e.Code == codeUpgradeRequired {
		out["subscription_status"] = e.SubscriptionStatus
	}

	return out
}

const (
	codeUpgradeRequired    = "UPGRADE_REQUIRED"
	codeInvalidCredentials = "INVALID_CREDENTIALS"

	// msgInvalidCredentials is shared by every credential failure so the
	// response never tells whether the email exists.
	msgInvalidCredentials = "Invalid email or password"
)

// Authentication errors, all 401.
var (
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Code: codeInvalidCredentials, Message: msgInvalidCredentials}
	ErrAccountInactive    = &Error{Status: http.StatusUnauthorized, Code: "ACCOUNT_INACTIVE", Message: msgInvalidCredentials, PublicCode: codeInvalidCredentials}
	ErrTokenInvalid       = &Error{Status: http.StatusUnauthorized, Code: "TOKEN_INVALID", Message: "Invalid token"}
	ErrTokenExpired       = &Error{Status: http.StatusUnauthorized, Code: "TOKEN_EXPIRED", Message: "Token has expired"}
	ErrTokenRevoked       = &Error{Status: http.StatusUnauthorized, Code: "TOKEN_REVOKED", Message: "Token has been revoked"}
	ErrMissingToken       = &Error{Status: http.StatusUnauthorized, Code: "TOKEN_MISSING", Message: "Authorization bearer token required"}
)

// Authorization and tenant errors, all 403.
var (
	ErrNoOrganization       = &Error{Status: http.StatusForbidden, Code: "NO_ORGANIZATION", Message: "User is not assigned to an organization"}
	ErrOrganizationInactive = &Error{Status: http.StatusForbidden, Code: "ORGANIZATION_INACTIVE", Message: "Organization is inactive or does not exist"}
	ErrPermissionDenied     = &Error{Status: http.StatusForbidden, Code: "PERMISSION_DENIED", Message: "You do not have permission to perform this action"}
	ErrOrgAdminRequired     = &Error{Status: http.StatusForbidden, Code: "ORG_ADMIN_REQUIRED", Message: "Organization admin access required"}
	ErrSuperAdminRequired   = &Error{Status: http.StatusForbidden, Code: "SUPER_ADMIN_REQUIRED", Message: "Super admin access required"}
	ErrSystemRoleProtected  = &Error{Status: http.StatusForbidden, Code: "SYSTEM_ROLE_PROTECTED", Message: "System roles can only be changed by a super admin"}
)

// ErrUpgradeRequired is the sentinel for billing failures, compare with errors.Is.
// Use UpgradeRequired to build one carrying the current status.
var ErrUpgradeRequired = &Error{
	Status:  http.StatusPaymentRequired,
	Code:    codeUpgradeRequired,
	Message: "Your subscription does not allow this action, please upgrade your plan",
}

// UpgradeRequired returns a 402 error carrying the current subscription status.
func UpgradeRequired(status string) *Error {
	e := *ErrUpgradeRequired
	e.SubscriptionStatus = status

	return &e
}

// Lookup and input errors.
var (
	ErrUserNotFound         = &Error{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "User not found"}
	ErrRoleNotFound         = &Error{Status: http.StatusNotFound, Code: "ROLE_NOT_FOUND", Message: "Role not found"}
	ErrSubmoduleNotFound    = &Error{Status: http.StatusNotFound, Code: "SUBMODULE_NOT_FOUND", Message: "Submodule not found"}
	ErrOrganizationNotFound = &Error{Status: http.StatusNotFound, Code: "ORGANIZATION_NOT_FOUND", Message: "Organization not found"}
	ErrRoleNameExists       = &Error{Status: http.StatusConflict, Code: "ROLE_EXISTS", Message: "A role with this name already exists"}
	ErrEmailExists          = &Error{Status: http.StatusConflict, Code: "EMAIL_EXISTS", Message: "A user with this email already exists"}
	ErrInvalidInput         = &Error{Status: http.StatusBadRequest, Code: "INVALID_INPUT", Message: "Invalid request"}
)

// InvalidInput returns a 400 error with a specific message.
func InvalidInput(message string) *Error {
	e := *ErrInvalidInput
	e.Message = message

	return &e
}
