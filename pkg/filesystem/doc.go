// Package filesystem provides implementations of types.FS: the OS
// filesystem and an afero backed one for tests, plus a directory walker
// that works on either.
package filesystem
