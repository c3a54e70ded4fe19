// Package naming turns resolved font identities into sanitized target
// paths and arbitrates collisions between files that map to the same
// target.
//
// Layout:
//   - scheme.go: the four naming schemes and their CLI names
//   - sanitize.go: per-segment cleanup (illegal characters, reserved
//     device names, NFC)
//   - formatter.go: Identity + Scheme → Target (directories, stem, ext)
//   - collision.go: DuplicateResolver, the run-wide claim set that picks
//     Move, Skip or a " (n)" suffix by comparing content hashes
package naming
