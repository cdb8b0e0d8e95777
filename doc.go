/*
Package turtle is a command-driven turtle graphics interpreter.

Lines of text such as "move 100", "left", "red" or "clear" steer a turtle over a
raster canvas. Each line is parsed into a closed set of commands, applied to the
turtle pose and mirrored on the canvas. Drawing commands are recorded in a history
that can be saved as a script and replayed later; the canvas itself can be saved
and loaded as a PNG image. Loading over unsaved work asks first.

# Architecture

The core (pkg/domain, pkg/interpreter, pkg/session) holds no I/O. Drawing,
storage and user interaction are ports (pkg/ports) with adapters for a raster
canvas, the filesystem, memory and Redis. Host shells drive sessions from a
terminal (pkg/runner), over HTTP (pkg/adapters/http) or as an MCP server
(pkg/adapters/mcp).

# Usage

	t := turtle.New(turtle.WithSize(400, 400))
	ctx := context.Background()

	for _, line := range []string{"red", "move 100", "right", "move 100"} {
		if rep := t.SubmitLine(ctx, line); rep.Err != nil {
			log.Println(rep.Error())
		}
	}

	f, _ := os.Create("out.png")
	defer f.Close()
	if err := t.WritePNG(f); err != nil {
		log.Fatal(err)
	}
*/
package turtle
