package ports

import "context"

// ScriptStore persists command scripts as ordered lines.
type ScriptStore interface {
	// Save replaces the script stored under name.
	Save(ctx context.Context, name string, lines []string) error

	// Load returns the lines of a script.
	// Returns domain.ErrScriptNotFound if the script does not exist.
	Load(ctx context.Context, name string) ([]string, error)

	Delete(ctx context.Context, name string) error

	// List returns the names of every stored script.
	List(ctx context.Context) ([]string, error)
}

// ImageStore persists encoded images (PNG bytes).
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) error

	// Load returns domain.ErrImageNotFound if the image does not exist.
	Load(ctx context.Context, name string) ([]byte, error)

	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}
