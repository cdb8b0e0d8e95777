/*
Package ports defines the driven ports (interfaces) of the turtle session.

These interfaces decouple the interpreter core from the raster it draws on, the
storage it persists to and the host that answers its questions.

# Key Interfaces

  - Canvas: the drawing collaborator (motion primitives, raster snapshot, messages).
  - ScriptStore / ImageStore: persistence for command scripts and PNG images.
  - Interaction: the modal prompts (unsaved changes, destination and source names).
  - DistributedLocker: cross-replica serialization for hosts that share stores.
*/
package ports
