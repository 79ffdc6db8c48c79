// Package vision provides the image classification capability used by the
// camera check.
//
// The real system calls a cloud vision API; this package defines the
// Classifier contract and local implementations so the rest of the system
// runs and tests without any network access.
package vision
