// Package auth provides authentication and authorization functionality for the application.
//
// This package implements a Role-Based Access Control (RBAC) system on top
// of signed bearer tokens:
//   - Users authenticate with email and password (Argon2id hashing)
//   - Successful logins receive a signed, time-limited JWT carrying only
//     the subject id and email, never roles
//   - Every authorization decision is resolved from the database at
//     request time, so role and permission changes take effect on the
//     subject's very next request
//
// # Authentication
//
// IssueToken and VerifyToken implement the token lifecycle. Authenticate
// turns an Authorization header into a Subject: it verifies the token,
// re-checks the live user record (existence and email binding), and
// attaches the subject's current role names.
//
// # Authorization
//
// The Service type provides methods for checking user permissions:
//   - Resolve: the subject's role-name and permission-name sets, the
//     union across all assigned roles
//   - HasPermission: admin role held, or permission in the union
//   - IsAdmin: membership in the superuser role
//
// The enforcement helpers wrap these into allow/deny decisions:
//   - RequirePermission: a specific permission is required
//   - RequireAdmin: the admin role is required
//   - RequireOwned: ownership-scoped actions, checked in fixed order
//     (admin bypass, then the ":any" grant, then ":own" with an
//     owner comparison)
//
// # Middleware
//
// Fiber middleware functions are provided for route protection:
//   - Authenticated: reject unauthenticated requests and store the
//     Subject in the request Locals
//   - RequirePermission: protect routes requiring a specific permission
//   - RequireAdmin: protect admin-only routes
//
// Example usage:
//
//	authService := auth.NewService(db, cfg)
//
//	// Check permission in handler
//	allowed, err := authService.HasPermission(userID, auth.PermJournalCreate)
//
//	// Protect route with middleware
//	app.Delete("/api/roles/:id",
//	    auth.Authenticated(authService),
//	    auth.RequireAdmin(authService),
//	    handler,
//	)
package auth
