package domain

import "strconv"

// Kind identifies a turtle command variant.
type Kind int

const (
	KindAbout Kind = iota
	KindPenUp
	KindPenDown
	KindTurnLeft
	KindTurnRight
	KindMoveForward
	KindMoveBackward
	KindSetColor
	KindReset
	KindClear
	KindSaveImage
	KindLoadImage
	KindSaveCommands
	KindLoadCommands

	// KindNone tags rejected lines that named no command.
	KindNone
)

// Distance bounds accepted by move and reverse.
const (
	MinDistance = 1
	MaxDistance = 1000
)

var kindNames = [...]string{
	KindAbout:        "about",
	KindPenUp:        "penup",
	KindPenDown:      "pendown",
	KindTurnLeft:     "left",
	KindTurnRight:    "right",
	KindMoveForward:  "move",
	KindMoveBackward: "reverse",
	KindSetColor:     "color",
	KindReset:        "reset",
	KindClear:        "clear",
	KindSaveImage:    "saveimage",
	KindLoadImage:    "loadimage",
	KindSaveCommands: "savecommands",
	KindLoadCommands: "loadcommands",
	KindNone:         "none",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Persistence reports whether the kind saves or loads an artifact.
func (k Kind) Persistence() bool {
	switch k {
	case KindSaveImage, KindLoadImage, KindSaveCommands, KindLoadCommands:
		return true
	}
	return false
}

// Drawing reports whether the kind is recorded in history and marks the session dirty.
func (k Kind) Drawing() bool {
	return k >= KindAbout && k <= KindClear
}

// Command is a validated turtle instruction.
// Values are produced by the interpreter; a Command that exists has passed validation.
type Command struct {
	Kind Kind

	// Distance is the magnitude typed by the user for move and reverse, always in [MinDistance, MaxDistance].
	Distance int

	// Color is set for KindSetColor.
	Color Color

	// Raw is the line the command was parsed from, recorded verbatim in history.
	Raw string
}

// Displacement returns the signed distance handed to the motion primitive.
func (c Command) Displacement() float64 {
	switch c.Kind {
	case KindMoveForward:
		return float64(c.Distance)
	case KindMoveBackward:
		return -float64(c.Distance)
	}
	return 0
}

// AboutAttribution is appended to the collaborator's about display.
const AboutAttribution = "Design by Mobin Sheikh."

// Artifact names what a persistence command saves or loads.
type Artifact int

const (
	ArtifactImage Artifact = iota
	ArtifactScript
)

func (a Artifact) String() string {
	if a == ArtifactScript {
		return "commands"
	}
	return "image"
}

// Artifact returns the artifact touched by a persistence kind.
func (k Kind) Artifact() Artifact {
	if k == KindSaveCommands || k == KindLoadCommands {
		return ArtifactScript
	}
	return ArtifactImage
}

// Text returns the line recorded in history: Raw when set, otherwise the canonical spelling.
func (c Command) Text() string {
	if c.Raw != "" {
		return c.Raw
	}
	switch c.Kind {
	case KindMoveForward, KindMoveBackward:
		return c.Kind.String() + " " + strconv.Itoa(c.Distance)
	case KindSetColor:
		return c.Color.String()
	}
	return c.Kind.String()
}
