// Package cli implements the interactive command line for the Lost & Found
// Pet client: a small REPL over the session service covering registration,
// login/logout, profile viewing and editing, and the OTP password-reset
// flow. Interactive input goes through swappable helpers (getSimpleText,
// getPassword, printlnFn) so command handlers can be tested without a
// terminal.
package cli
