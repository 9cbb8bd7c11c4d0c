//go:build headless

package audio

// DefaultOutput discards audio in headless builds.
var DefaultOutput OutputFactory = OpenNull
