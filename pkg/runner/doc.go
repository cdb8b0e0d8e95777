/*
Package runner implements the interactive loop that feeds lines to a turtle session.

It is the bridge between a session and the outside world: lines come in through a
pluggable IOHandler, are submitted one at a time, and session messages go back out
through the same handler (wired into the canvas with Messenger).

# Key Components

  - Runner: reads, submits and stops on EOF, exit/quit or an interrupt.
  - TextHandler: line-oriented terminal IO with a "> " prompt.
  - JSONHandler: JSON-Lines IO for scripted hosts; emits one report record per line.
  - TextInteraction / StaticInteraction: answer unsaved-changes prompts and file choosers.

# Usage

	h := runner.NewTextHandler(os.Stdin, os.Stdout)
	rast := canvas.New(800, 400, canvas.WithMessenger(runner.Messenger(ctx, h)))
	sess := session.New(rast, session.WithInteraction(runner.NewTextInteraction(h)))

	if err := runner.NewRunner(runner.WithInputHandler(h)).Run(ctx, sess); err != nil {
		log.Fatal(err)
	}
*/
package runner
