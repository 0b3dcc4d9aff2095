// Package api contains the HTTP handlers, middleware, and error mapping
// for the public REST surface: query submission and polling under
// /api/queries, and authentication under /api/auth.
package api
