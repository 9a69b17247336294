package handler

const (
	// RootPath is the prefix of every enterprise route.
	RootPath = "/enterprise"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// AuthPath groups login, refresh, logout and profile routes.
	AuthPath = RootPath + "/auth"
	// OrgAdminPath groups organization administration routes.
	OrgAdminPath = RootPath + "/org-admin"
	// PlatformPath groups super admin routes.
	PlatformPath = RootPath + "/platform"

	// ErrNilACDFatalLogMsg is used if app or env var pointer is nil.
	ErrNilACDFatalLogMsg = "app or handler env is nil"
)
