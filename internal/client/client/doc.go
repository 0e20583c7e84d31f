// Package client is the transport layer of the profile client.
//
// # Overview
//
// The Client interface names the remote API operations (login, register,
// current user, update/delete/list users). HTTPClient implements it over
// HTTP/JSON:
//
//   - every request reads the bearer token from durable storage and sends
//     "Authorization: Bearer <token>" when one is present;
//   - a 401 response clears the stored credentials, emits the unauthorized
//     event to listeners registered with OnUnauthorized, and is still
//     returned to the caller;
//   - any other non-2xx response is returned as *HTTPError;
//   - there is no retry, timeout or backoff. Cancellation is via ctx only.
//
// # Error Handling
//
// Callers match failures with errors.Is against ErrUnauthorized,
// ErrForbidden, ErrNotFound and ErrUnavailable, or extract details with
// errors.As into *HTTPError. ServerMessage returns the server-provided
// message suitable for display.
//
// The unauthorized event is how the transport tells the application to drop
// the session and navigate to the login view; the transport itself knows
// nothing about routing.
package client
