/*
Package session implements the turtle session and its multi-client manager.

A Session parses submitted lines, keeps the turtle pose and the command history,
drives the canvas and runs the save/load round-trips behind an unsaved-changes
guard. A Manager keeps named sessions for hosts that serve many clients and makes
sure each session sees one line at a time.
*/
package session
