// Package services implements the driving port interfaces.
// Services contain the sync pipeline and orchestrate calls to the
// driven ports (stores, fetchers, notifiers).
package services
