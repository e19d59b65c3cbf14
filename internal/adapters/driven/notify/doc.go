// Package notify implements the notification channels that receive
// release-published and content-update events from a sync run.
//
// Webhook posts a JSON payload to an HTTP endpoint with retries, Log
// writes the event to the process log, and Multi fans out to several
// channels and sums the delivery counts.
package notify
