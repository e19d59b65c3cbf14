// Package github implements the repository fetcher for GitHub.
//
// A sync run reads one branch of one repository. The fetcher lists the
// branch with a single recursive Trees API call and then reads every
// selected file by blob SHA. File selection follows the shared rules in
// package connectors, so GitHub and Azure DevOps repositories produce the
// same document, API spec and image sets.
//
// # Authentication
//
// Personal access tokens (classic or fine-grained) are sent as bearer
// tokens through golang.org/x/oauth2. Private repositories need the
// 'repo' scope, or 'contents:read' for fine-grained tokens.
//
// # Rate Limiting
//
// The client implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits the sustained request
//     rate so that a large repository stays under the 5,000/hour limit.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset are
//     tracked on every response. When the remaining quota drops below a
//     reserve, requests wait for the reset time.
//
// # Error Handling
//
// A tree failure aborts the fetch and is returned as [APIError] or
// [RateLimitError]. A failed blob read is logged and the file is skipped.
// Each blob read is bounded by [connectors.FileTimeout]; the tree call by
// [connectors.ListTimeout].
//
// # Example Usage
//
//	cfg, _ := github.ConfigFromRepository(repo)
//	f, err := github.NewFetcher(ctx, cfg, token, nil)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	result, err := f.Fetch(ctx)
package github
