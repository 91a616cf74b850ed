// Package middleware adapts goAccount access tokens to net/http.
//
//   - [RequireAccessToken] reads the Authorization bearer token, resolves
//     it with Engine.UserDetail and injects the account into the context.
//   - [RequireRole] gates a handler on a role of that account.
//
// Token parsing and account lookup stay in the engine. This package only
// translates results into HTTP responses.
package middleware
