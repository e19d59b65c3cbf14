// Package connectors provides the source fetchers that pull content from
// external version-controlled repositories. Each subpackage knows how to
// list and read files for one hosting service (GitHub, Azure DevOps).
//
// The file selection rules live here so that every backend applies the
// same contract.
package connectors
