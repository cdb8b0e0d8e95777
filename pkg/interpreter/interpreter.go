package interpreter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/turtle/pkg/domain"
)

type entry struct {
	kind     domain.Kind
	color    domain.Color
	distance bool
}

var table = map[string]entry{
	"about":        {kind: domain.KindAbout},
	"penup":        {kind: domain.KindPenUp},
	"pendown":      {kind: domain.KindPenDown},
	"left":         {kind: domain.KindTurnLeft},
	"right":        {kind: domain.KindTurnRight},
	"move":         {kind: domain.KindMoveForward, distance: true},
	"reverse":      {kind: domain.KindMoveBackward, distance: true},
	"black":        {kind: domain.KindSetColor, color: domain.Black},
	"red":          {kind: domain.KindSetColor, color: domain.Red},
	"green":        {kind: domain.KindSetColor, color: domain.Green},
	"white":        {kind: domain.KindSetColor, color: domain.White},
	"reset":        {kind: domain.KindReset},
	"clear":        {kind: domain.KindClear},
	"saveimage":    {kind: domain.KindSaveImage},
	"loadimage":    {kind: domain.KindLoadImage},
	"savecommands": {kind: domain.KindSaveCommands},
	"loadcommands": {kind: domain.KindLoadCommands},
}

// Parse validates a single line.
// Failures are *domain.ParseError values whose text is the message shown to the user.
func Parse(line string) (domain.Command, error) {
	fields := strings.FieldsFunc(line, asciiSpace)
	if len(fields) == 0 {
		return domain.Command{}, &domain.ParseError{Kind: domain.ErrEmptyInput, Line: line}
	}

	name := strings.ToLower(fields[0])
	e, ok := table[name]
	if !ok {
		return domain.Command{}, &domain.ParseError{Kind: domain.ErrUnknownCommand, Line: line}
	}

	cmd := domain.Command{Kind: e.kind, Color: e.color, Raw: line}
	if !e.distance {
		// Extra tokens are ignored.
		return cmd, nil
	}

	if len(fields) < 2 {
		return domain.Command{}, &domain.ParseError{Kind: domain.ErrMissingArgument, Name: name, Line: line}
	}
	d, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.Command{}, &domain.ParseError{Kind: domain.ErrBadNumber, Name: name, Line: line}
	}
	if d < domain.MinDistance || d > domain.MaxDistance {
		return domain.Command{}, &domain.ParseError{Kind: domain.ErrOutOfRange, Name: name, Line: line}
	}
	cmd.Distance = d
	return cmd, nil
}

// Names returns every recognized command name, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// asciiSpace splits tokens on ASCII whitespace only; other Unicode spaces stay inside a token.
func asciiSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
