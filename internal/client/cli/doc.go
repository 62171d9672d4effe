// Package cli provides the interactive HireDesk command-line client.
//
// It wires configuration, the local session database, the recruitment API
// client and the controllers, and runs a REPL with two command sets: public
// commands for applicants (projects, apply, login) and operator commands for
// the review dashboard (list, add, edit, delete, accept).
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// When the server rejects the stored session the client prints a sign-in
// notice and falls back to the public command set.
package cli
