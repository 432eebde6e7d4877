// Package main provides the entry point for the authgate permission service.
// It runs a Fiber web server that resolves permission checks for users by
// combining hierarchical group memberships, direct grants, and attribute
// conditions into a single audited allow or deny decision. The application
// uses gorm for data persistence and exposes a JSON API for managing users,
// groups, grants, and the audit trail.
package main
