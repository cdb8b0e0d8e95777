/*
Package domain contains the core models of the turtle interpreter.

It defines the closed set of commands, the pen palette, the turtle pose and the
unsaved-changes guard. This package is kept pure and free of I/O so the session,
the canvas and every host shell share one vocabulary.

# Key Entities

  - Command: a validated instruction (Kind plus its distance or colour).
  - Pose: position, heading, pen state and pen colour.
  - Guard: the {clean, dirty} x {idle, confirming} state machine consulted before a load.
  - ParseError / PersistenceError: recoverable failures surfaced to the user as messages.
*/
package domain
