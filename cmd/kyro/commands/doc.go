// Package commands defines the kyro CLI and wires dependencies for subcommands.
//
// Commands
//
//   - rootkey   Print a fresh random root key
//   - seal      Encrypt JSON operations from stdin into envelopes
//   - open      Decrypt JSON envelopes from stdin into operations
//   - demo      Run two in-process participants through a short session
//
// seal and open read and write one JSON value per line, so
// `kyro seal ... | kyro open ...` round-trips a stream of operations when
// both sides use the same root key and channel id.
//
// # Implementation
//
// The root command loads Config from KYRO_* environment variables, applies
// flag overrides and builds the dependency graph before any subcommand runs.
package commands
