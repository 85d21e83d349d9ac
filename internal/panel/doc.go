// Package panel holds the front-end independent core of the recording panel.
//
// A SyncLoop polls the recording service and replaces the status held by a
// Store wholesale on every successful poll. The Store recomputes the report
// sections whenever the report text changes and notifies subscribers. A
// Controller issues the start, stop and upload commands; commands never
// change the store directly, the next poll reflects their effect.
//
// The terminal panel, the browser panel and the one-shot CLI commands are all
// thin front ends over these three types.
package panel
