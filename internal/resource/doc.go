// Package resource bounds what dictionary readers may consume: memory held by
// the decoded-shard cache, concurrent remote fetches, and remote IO bandwidth.
//
// A nil *Controller is valid and imposes no limits, so callers never need to
// branch on whether limits were configured.
package resource
