package role

type createInput struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
	// OrgID lets super admins create a custom role for an organization,
	// without it they create a system role. Ignored for org admins.
	OrgID *string `json:"org_id" validate:"omitempty,max=64"`
}

type assignInput struct {
	// SubmoduleIDs replaces the grants of the role, [] revokes all.
	SubmoduleIDs []string `json:"submodule_ids" validate:"required,dive,required,max=64"`
}
