// Package manager owns the encrypted channels of one participant process.
//
// It keeps channels keyed by id and a reverse index from users to the
// channels they joined, and is the single entry point the transport and CRDT
// layers call to broadcast and receive operations.
package manager
