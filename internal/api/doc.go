// Package api contains the HTTP handlers for the query queue: submission,
// status and position lookup, and queue statistics. Handlers translate
// between JSON DTOs and the service layer and never touch queue internals.
package api
