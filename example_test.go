package turtle_test

import (
	"context"
	"fmt"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/pkg/adapters/memory"
	"github.com/aretw0/turtle/pkg/runner"
)

// This example draws a square and prints the recorded history.
func Example() {
	t := turtle.New(turtle.WithSize(200, 200))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		t.SubmitLine(ctx, "move 50")
		t.SubmitLine(ctx, "right")
	}
	fmt.Println(t.History())
	fmt.Println(t.Pose().Heading)
	// Output:
	// [move 50 right move 50 right move 50 right move 50 right]
	// 0
}

// Rejected lines change nothing and report the message shown to the user.
func Example_rejected() {
	t := turtle.New(turtle.WithMessenger(func(msg string) { fmt.Println("canvas:", msg) }))
	rep := t.SubmitLine(context.Background(), "move 5000")

	fmt.Println(rep.Accepted, len(t.History()))
	// Output:
	// canvas: Move distance must be between 1 and 1000.
	// false 0
}

// Scripts saved from one turtle can be replayed on another.
func Example_scripts() {
	ctx := context.Background()
	scripts := memory.NewScriptStore()

	a := turtle.New(
		turtle.WithScriptStore(scripts),
		turtle.WithInteraction(runner.StaticInteraction{Target: "zigzag"}),
	)
	a.Replay(ctx, []string{"move 10", "left", "move 10"})
	fmt.Println(a.SubmitLine(ctx, "savecommands").Messages)

	b := turtle.New(
		turtle.WithScriptStore(scripts),
		turtle.WithInteraction(runner.StaticInteraction{Source: "zigzag"}),
	)
	fmt.Println(b.SubmitLine(ctx, "loadcommands").Messages)
	fmt.Println(b.Pose() == a.Pose())
	// Output:
	// [Commands saved.]
	// [Commands loaded and executed.]
	// true
}
