package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/config"
	"github.com/aretw0/turtle/pkg/adapters/file"
	"github.com/aretw0/turtle/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/turtle/pkg/adapters/redis"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/persistence/middleware"
	"github.com/aretw0/turtle/pkg/ports"
)

// Stores bundles the persistence adapters selected by configuration.
type Stores struct {
	Scripts ports.ScriptStore
	Images  ports.ImageStore
	Locker  ports.DistributedLocker // Only set for the redis driver.

	close func() error
}

// Close releases the backend connection, if any.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Names lists the stored artifacts of one kind.
func (s *Stores) Names(ctx context.Context, a domain.Artifact) ([]string, error) {
	if a == domain.ArtifactScript {
		return s.Scripts.List(ctx)
	}
	return s.Images.List(ctx)
}

// openStores builds the stores for cfg.Store.Driver, encrypted when a key is configured.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stores, error) {
	stores, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if enc, ok := cfg.Encryption(); ok {
		logger.Debug("store encryption enabled", "fallback_keys", len(enc.FallbackKeys))
		stores.Scripts = middleware.NewEncryptedScripts(enc)(stores.Scripts)
		stores.Images = middleware.NewEncryptedImages(enc)(stores.Images)
	}
	return stores, nil
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return &Stores{Scripts: memory.NewScriptStore(), Images: memory.NewImageStore()}, nil

	case config.DriverRedis:
		rc := cfg.Store.Redis
		client := redisAdapter.NewClient(rc.Addr, rc.Password, rc.DB)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		logger.Debug("redis store connected", "addr", rc.Addr, "prefix", rc.Prefix, "ttl", rc.TTL)
		opts := []redisAdapter.Option{redisAdapter.WithPrefix(rc.Prefix), redisAdapter.WithTTL(rc.TTL)}
		return &Stores{
			Scripts: redisAdapter.NewScriptStore(client, opts...),
			Images:  redisAdapter.NewImageStore(client, opts...),
			Locker:  redisAdapter.NewLocker(client, rc.Prefix),
			close:   client.Close,
		}, nil

	default:
		logger.Debug("file store", "dir", cfg.Store.Dir)
		return &Stores{
			Scripts: file.NewScriptStore(filepath.Join(cfg.Store.Dir, "scripts")),
			Images:  file.NewImageStore(filepath.Join(cfg.Store.Dir, "images")),
		}, nil
	}
}

// newTurtle builds a turtle configured from cfg and wired to stores.
func newTurtle(cfg config.Config, stores *Stores, logger *slog.Logger, extra ...turtle.Option) *turtle.Turtle {
	opts := []turtle.Option{
		turtle.WithSize(cfg.Canvas.Width, cfg.Canvas.Height),
		turtle.WithPenWidth(cfg.Canvas.PenWidth),
		turtle.WithTurnStep(cfg.Turtle.TurnStep),
		turtle.WithMaxReplayDepth(cfg.Turtle.MaxReplayDepth),
		turtle.WithMaxReplayLines(cfg.Turtle.MaxReplayLines),
		turtle.WithLogger(logger),
	}
	if stores != nil {
		opts = append(opts, turtle.WithScriptStore(stores.Scripts), turtle.WithImageStore(stores.Images))
	}
	return turtle.New(append(opts, extra...)...)
}

// promptInteraction answers from the prompt section of the configuration.
type promptInteraction struct {
	choice domain.Choice
	cfg    config.PromptConfig
}

var _ ports.Interaction = promptInteraction{}

func headlessInteraction(cfg config.Config) ports.Interaction {
	return promptInteraction{choice: cfg.UnsavedChoice(), cfg: cfg.Prompt}
}

func (p promptInteraction) ConfirmUnsaved(context.Context, domain.Artifact) (domain.Choice, error) {
	return p.choice, nil
}

func (p promptInteraction) ChooseDestination(_ context.Context, a domain.Artifact) (string, bool, error) {
	name := p.cfg.ImageTarget
	if a == domain.ArtifactScript {
		name = p.cfg.ScriptTarget
	}
	return name, name != "", nil
}

func (p promptInteraction) ChooseSource(_ context.Context, a domain.Artifact) (string, bool, error) {
	name := p.cfg.ImageSource
	if a == domain.ArtifactScript {
		name = p.cfg.ScriptSource
	}
	return name, name != "", nil
}

// turtleHeadless returns the options for runs with nobody at the keyboard.
func turtleHeadless(cfg config.Config) []turtle.Option {
	return []turtle.Option{turtle.WithInteraction(headlessInteraction(cfg))}
}
