package ports

import (
	"context"

	"github.com/aretw0/turtle/pkg/domain"
)

// Interaction answers the modal questions a session asks during persistence.
// Implementations block until the host has an answer; the session suspends meanwhile.
type Interaction interface {
	// ConfirmUnsaved is asked before a load when the artifact has unsaved changes.
	ConfirmUnsaved(ctx context.Context, artifact domain.Artifact) (domain.Choice, error)

	// ChooseDestination picks where to save. ok is false when the user dismissed the chooser.
	ChooseDestination(ctx context.Context, artifact domain.Artifact) (name string, ok bool, err error)

	// ChooseSource picks what to load. ok is false when the user dismissed the chooser.
	ChooseSource(ctx context.Context, artifact domain.Artifact) (name string, ok bool, err error)
}
