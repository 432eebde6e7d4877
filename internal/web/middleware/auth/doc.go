// Package auth provides authentication middleware for the web application.
//
// The middleware handles session validation and rejects unauthenticated
// requests with 401. It also adds the current user to the request context
// for use in handlers.
//
// The middleware performs the following tasks:
//   - Validates session cookies and returns 401 if invalid
//   - Adds current user information to fiber.Locals for handler access
//   - Allows public access to login, logout, liveness and metrics endpoints
//
// Usage:
//
//	app.Use(authmiddleware.Middleware)
//
// The middleware expects sessions to be managed by the session package.
package auth
