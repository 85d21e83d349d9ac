// Package server serves the browser panel: a single page that shows the
// recording status and the sections of the last meeting report, with buttons
// for start, stop and upload.
//
// # Endpoints
//
//   - GET / - embedded web page
//   - GET /healthz - liveness probe
//   - POST /api/auth - exchange the panel password for a bearer token
//   - GET /api/state - current panel snapshot
//   - POST /api/start - start recording, body {"meeting_url": "..."}
//   - POST /api/stop - stop recording
//   - POST /api/upload - upload the last report
//   - POST /api/refresh - poll the recording service now
//   - GET /api/ws - websocket pushing the snapshot after every change
//
// # Authentication
//
// When a password hash is configured every /api route except /api/auth
// requires a token, sent as "Authorization: Bearer <token>" or, for the
// websocket, as the "token" query parameter. Password attempts are rate
// limited per client IP and repeated failures block the client with an
// exponentially growing delay. Without a password hash the API is open,
// which is only sensible on localhost.
//
// The server never opens meeting links itself: the page opens them in the
// operator's browser before it calls /api/start.
package server
