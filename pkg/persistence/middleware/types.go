package middleware

import "github.com/aretw0/turtle/pkg/ports"

// ScriptMiddleware allows wrapping a ScriptStore to add behavior.
type ScriptMiddleware func(ports.ScriptStore) ports.ScriptStore

// ImageMiddleware allows wrapping an ImageStore to add behavior.
type ImageMiddleware func(ports.ImageStore) ports.ImageStore
