// Package fontmeta reads identity metadata from font files.
//
// A single read of the file replaces any external tooling: the magic bytes
// select the container format, WOFF and WOFF2 are unwrapped to SFNT in
// memory, and the name and OS/2 tables supply family, subfamily, weight
// class and manufacturer.
//
// Files are opened read-only. Anything that is not a parseable font
// yields an error wrapping [ErrInvalidFont].
package fontmeta
