// Package git provides a client for materializing pinned source checkouts
// during environment provisioning.
//
// This package handles Git operations including:
//   - Repository cloning into the provisioning workspace
//   - Hard checkout of a pinned commit revision
//   - Typed errors for structured error handling
//
// Checkouts are pin-exact: a checkout step names a full commit hash and the
// resulting working tree is detached at that commit, so a rebuilt
// environment always contains identical library sources.
package git
