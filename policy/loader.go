package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yairfalse/leima/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Loader reads .rego files from a directory into an Engine.
type Loader struct {
	dir    string
	engine *Engine
	logger *telemetry.Logger
	tracer trace.Tracer
}

// NewLoader creates a loader for the given policy directory.
func NewLoader(dir string, engine *Engine, logger *telemetry.Logger) *Loader {
	return &Loader{
		dir:    dir,
		engine: engine,
		logger: logger,
		tracer: otel.Tracer("policy-loader"),
	}
}

// LoadAll walks the policy directory and loads every .rego file it finds.
// The policy name is the file name without its extension.
func (l *Loader) LoadAll(ctx context.Context) error {
	ctx, span := l.tracer.Start(ctx, "policy_loader.load_all",
		trace.WithAttributes(attribute.String("policy.dir", l.dir)))
	defer span.End()

	if _, err := os.Stat(l.dir); os.IsNotExist(err) {
		return fmt.Errorf("policy directory does not exist: %s", l.dir)
	}

	err := filepath.Walk(l.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".rego") {
			return nil
		}
		return l.loadPolicyFile(ctx, path)
	})
	if err != nil {
		return err
	}

	l.logger.WithContext(ctx).Info().
		Str("policy_dir", l.dir).
		Int("count", l.engine.Count()).
		Msg("policies loaded")

	return nil
}

func (l *Loader) loadPolicyFile(ctx context.Context, path string) error {
	if err := l.validatePath(path); err != nil {
		return fmt.Errorf("invalid policy path %s: %w", path, err)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), ".rego")

	if err := l.engine.LoadPolicy(ctx, name, string(content)); err != nil {
		return fmt.Errorf("failed to load policy %s from %s: %w", name, path, err)
	}

	return nil
}

// validatePath rejects paths that escape the policy directory.
func (l *Loader) validatePath(path string) error {
	relPath, err := filepath.Rel(filepath.Clean(l.dir), filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to resolve relative path: %w", err)
	}

	if strings.HasPrefix(relPath, "..") {
		return fmt.Errorf("path traversal detected")
	}

	return nil
}
