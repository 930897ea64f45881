// Package bot implements the Matrix chat adapter.
//
// The adapter is a thin translation layer: it parses text commands
// (register, drink, bulk, stats, top, history), resolves the sender to a
// registered account, calls into the store, and renders replies. It makes
// no persistence decisions of its own and never retries failed storage
// calls; errors surface as user-facing messages.
//
// The Matrix room a command arrives in is treated as the group context
// for registration and leaderboards. Sender and room IDs are mapped to
// stable numeric identities with a 63-bit FNV hash.
package bot
