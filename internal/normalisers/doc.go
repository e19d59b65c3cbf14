// Package normalisers turns raw repository files into domain records.
//
//   - markdown: documents and blog posts (frontmatter, slugs, release blocks)
//   - meta: _meta.json category descriptors
//   - apispec: API specification metadata
//
// Normalisers are pure functions over (path, content); they never touch
// storage or the network.
package normalisers
