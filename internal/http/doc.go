// Package http provides HTTP handlers and middleware for the roster API.
//
// The router exposes the following endpoints:
//   - GET /students, POST /students, GET /students/{id}, PUT /students/{id},
//     DELETE /students/{id}: student management endpoints exchanging the
//     `studentDTO` payload defined in roster_handler.go.
//   - GET /trainers, POST /trainers, GET /trainers/{id}, PUT /trainers/{id},
//     DELETE /trainers/{id}: trainer management endpoints exchanging the
//     `trainerDTO` payload defined in roster_handler.go.
//   - GET /sessions, POST /sessions, GET /sessions/{id}, PUT /sessions/{id},
//     DELETE /sessions/{id}: session management exchanging the `sessionDTO`
//     payload defined in session_handler.go. DELETE cancels rather than
//     removes; cancelled sessions stay readable.
//   - POST /sessions/{id}/move: commits a reschedule to a new seat and time
//     window on the same day.
//   - PUT /sessions/{id}/status: transitions a session's lifecycle state.
//   - GET /availability: free seats for a proposed type/date/time window.
//   - GET /blocked-days, POST /blocked-days, GET /blocked-days/{id},
//     DELETE /blocked-days/{id}: blocked-day rule management. Rules are
//     immutable; there is no update endpoint.
//   - GET /blocked-days/effective: expanded blocked windows for a date range.
//   - GET /grid/{date}: the positioned session blocks for one day's grid.
//   - GET /analytics/workload, GET /analytics/utilization: reporting views
//     over a date range.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
