// Package httpapi mounts the authentication engine on net/http.
//
// It exposes three endpoints on a standard [http.ServeMux]:
//
//	POST /register — JSON {"username":"...", "password":"..."}
//	POST /token    — JSON {"username":"...", "password":"..."}
//	POST /logout   — Token header carrying the access token
//
// The package owns caller-facing request validation (the "@" username rule)
// and the translation of engine sentinels into HTTP status codes. It holds no
// authentication state of its own.
package httpapi
