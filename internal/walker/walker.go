// Package walker produces candidate file paths for a scan. Filtering is
// purely structural: exclude globs, hidden entries, symlinks. Deciding
// whether a file is source code is the analyzer's job.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"loclens/internal/shared/util"
)

// Options controls which paths a walk yields.
type Options struct {
	// ExcludeDirs and ExcludeFiles are glob patterns matched against
	// the base name of each entry.
	ExcludeDirs  []string
	ExcludeFiles []string
	// Hidden includes dot-prefixed files and directories. Explicitly
	// named roots are always entered, hidden or not.
	Hidden bool
	// FollowSymlinks descends into symlinked directories and yields
	// symlinked files. Cycles are the operator's responsibility.
	FollowSymlinks bool
}

type Walker struct {
	opts      Options
	dirGlobs  []glob.Glob
	fileGlobs []glob.Glob
}

func New(opts Options) (*Walker, error) {
	w := &Walker{opts: opts}
	for _, p := range opts.ExcludeDirs {
		p = util.NormalizePatternPath(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		w.dirGlobs = append(w.dirGlobs, g)
	}
	for _, p := range opts.ExcludeFiles {
		p = util.NormalizePatternPath(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		w.fileGlobs = append(w.fileGlobs, g)
	}
	return w, nil
}

// Walk sends every candidate file under roots to out and closes out
// when done. A root that is itself a file is yielded directly. Walk
// returns the first traversal error or the context's error if the scan
// is cancelled mid-walk.
func (w *Walker) Walk(ctx context.Context, roots []string, out chan<- string) error {
	defer close(out)
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("stat root %q: %w", root, err)
		}
		if !info.IsDir() {
			if err := w.emit(ctx, root, out); err != nil {
				return err
			}
			continue
		}
		if err := w.walkDir(ctx, root, out); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkDir(ctx context.Context, root string, out chan<- string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path == root {
				return nil
			}
			if w.excludeDir(base) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !w.opts.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil {
				// Dangling link.
				return nil
			}
			if target.IsDir() {
				if w.excludeDir(base) || (!w.opts.Hidden && hidden(base)) {
					return nil
				}
				return w.walkDir(ctx, path, out)
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		if w.excludeFile(base) || (!w.opts.Hidden && hidden(base)) {
			return nil
		}
		return w.emit(ctx, path, out)
	})
}

func (w *Walker) emit(ctx context.Context, path string, out chan<- string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- path:
		return nil
	}
}

func (w *Walker) excludeDir(base string) bool {
	if !w.opts.Hidden && hidden(base) {
		return true
	}
	for _, g := range w.dirGlobs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Walker) excludeFile(base string) bool {
	for _, g := range w.fileGlobs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func hidden(base string) bool {
	return len(base) > 1 && base[0] == '.'
}
