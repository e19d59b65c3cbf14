// Package azure implements the repository fetcher for Azure DevOps Git
// repositories.
//
// The items API is used for both listing and reading: one call with
// recursionLevel=Full scoped to the base path returns every object of the
// branch, and file content is read through the same endpoint with
// $format=octetStream. Requests authenticate with HTTP Basic and a
// personal access token (empty user name). The token needs the
// Code (Read) scope.
package azure
