// Package main provides the entry point of authgate, the authorization gate
// of the enterprise suite. It serves login, token rotation and the
// organization and platform administration API over fiber, persists
// tenants, users, roles and grants with gorm and guards every protected
// route with the token, tenant, subscription and permission chain.
package main
