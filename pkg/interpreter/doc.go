// Package interpreter turns one line of text into a validated domain.Command.
//
// Parsing is a pure function: it performs no I/O and never touches session state.
package interpreter
