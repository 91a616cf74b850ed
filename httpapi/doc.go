// Package httpapi exposes a goAccount engine over HTTP with gorilla/mux.
//
// Routes live under /jwt:
//
//	GET  /jwt/user                          account of the bearer token
//	POST /jwt/login                         {username, password}
//	POST /jwt/register                      {username, password, first_name, last_name}
//	GET  /jwt/confirm/{token}
//	POST /jwt/forgot-password               {username}
//	GET  /jwt/reset-password/verify/{token}
//	POST /jwt/reset-password/{token}        {password}
//
// Bodies may be JSON or form encoded. Flow results are written as
// {"message","code"} with the HTTP status equal to code; a successful login
// writes {"access_token"}.
package httpapi
