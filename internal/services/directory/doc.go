// Package directory memoizes peer lookups against the relay's user
// directory.
package directory
