package duckdb

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	currentDBName = "quality_metrics.duckdb"
	oldDBName     = "quality_metrics_old.duckdb"
	buildDBName   = "quality_metrics.build.duckdb"
)

// Generations manages the two snapshot slots on disk. A new snapshot is
// built in a scratch file and promoted with two renames, so a crashed or
// failed build never clobbers the slot readers see.
type Generations struct {
	dir string
}

func NewGenerations(dir string) Generations {
	return Generations{dir: dir}
}

func (g Generations) CurrentPath() string { return filepath.Join(g.dir, currentDBName) }
func (g Generations) OldPath() string     { return filepath.Join(g.dir, oldDBName) }
func (g Generations) BuildPath() string   { return filepath.Join(g.dir, buildDBName) }

// HasCurrent reports whether a promoted snapshot exists yet.
func (g Generations) HasCurrent() bool {
	_, err := os.Stat(g.CurrentPath())
	return err == nil
}

func (g Generations) HasOld() bool {
	_, err := os.Stat(g.OldPath())
	return err == nil
}

// BeginBuild prepares the scratch slot, removing a leftover from an
// interrupted run.
func (g Generations) BeginBuild() (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}
	if err := os.Remove(g.BuildPath()); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale build database: %w", err)
	}
	return g.BuildPath(), nil
}

// Promote rotates current to old and the finished build to current. The
// previous generation is kept for exactly one run.
func (g Generations) Promote() error {
	if _, err := os.Stat(g.BuildPath()); err != nil {
		return fmt.Errorf("no finished build to promote: %w", err)
	}
	if g.HasCurrent() {
		if err := os.Rename(g.CurrentPath(), g.OldPath()); err != nil {
			return fmt.Errorf("rotate current generation: %w", err)
		}
	}
	if err := os.Rename(g.BuildPath(), g.CurrentPath()); err != nil {
		return fmt.Errorf("promote build to current: %w", err)
	}
	return nil
}

// Abort discards the scratch slot after a failed build.
func (g Generations) Abort() error {
	if err := os.Remove(g.BuildPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove build database: %w", err)
	}
	return nil
}
