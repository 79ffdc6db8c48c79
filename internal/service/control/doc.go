// Package control wires configuration, locking, storage and the security
// service into a Session used by every CLI command.
package control
