// Package models contains the gorm models of the enterprise collections:
// organizations, users, roles, modules, submodules, role permissions and
// refresh tokens. Table names match the collection names used by the
// other suite services.
package models
