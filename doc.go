// Package main provides the entry point for the Pressroom editorial
// service. It runs a Fiber web server exposing a JSON API for
// authentication, role-based access control administration, and
// editorial content, backed by gorm for persistence. Authorization is
// resolved from the database on every request.
package main
