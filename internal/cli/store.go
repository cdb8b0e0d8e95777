package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/turtle/pkg/domain"
)

// ParseArtifact maps the --kind flag to an artifact.
func ParseArtifact(kind string) (domain.Artifact, error) {
	switch kind {
	case "script", "scripts", "commands":
		return domain.ArtifactScript, nil
	case "image", "images":
		return domain.ArtifactImage, nil
	}
	return 0, fmt.Errorf("unknown kind %q (want scripts or images)", kind)
}

// ListStored prints the names of every stored artifact of one kind.
func ListStored(ctx context.Context, opts RunOptions, a domain.Artifact, w io.Writer) error {
	return withStores(ctx, opts, func(s *Stores) error {
		names, err := s.Names(ctx, a)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintf(w, "No %s stored.\n", a)
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
		return nil
	})
}

// RemoveStored deletes the named artifacts.
func RemoveStored(ctx context.Context, opts RunOptions, a domain.Artifact, names []string, w io.Writer) error {
	return withStores(ctx, opts, func(s *Stores) error {
		for _, n := range names {
			var err error
			if a == domain.ArtifactScript {
				err = s.Scripts.Delete(ctx, n)
			} else {
				err = s.Images.Delete(ctx, n)
			}
			if err != nil {
				return fmt.Errorf("failed to delete %s %q: %w", a, n, err)
			}
			fmt.Fprintf(w, "Deleted '%s'.\n", n)
		}
		return nil
	})
}

func withStores(ctx context.Context, opts RunOptions, fn func(*Stores) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	stores, err := openStores(ctx, cfg, createLogger(cfg))
	if err != nil {
		return err
	}
	defer stores.Close()
	return fn(stores)
}
