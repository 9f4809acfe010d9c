package loader

import (
	"context"

	"github.com/standardbeagle/idlunify/internal/debug"
	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
)

// walker is a depth-first traversal of the include graph
type walker struct {
	loader *Loader
	// done holds fully visited files by logical path, so diamonds load once
	done map[string]*File
	// onStack maps the files of the current path to their stack index
	onStack map[string]int
}

func (w *walker) visit(ctx context.Context, f *File, stack []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.onStack[f.Path] = len(stack)
	stack = append(stack, f.Path)
	defer delete(w.onStack, f.Path)

	for _, spec := range f.Document.Dependencies() {
		dep, err := w.loader.loadInclude(f, spec)
		if err != nil {
			return err
		}
		if i, ok := w.onStack[dep.Path]; ok {
			cycle := append(append([]string(nil), stack[i:]...), dep.Path)
			return idlerrors.NewImportCycle(cycle)
		}
		if seen, ok := w.done[dep.Path]; ok {
			f.Includes = append(f.Includes, Include{Spec: spec, File: seen})
			continue
		}

		f.Includes = append(f.Includes, Include{Spec: spec, File: dep})
		if err := w.visit(ctx, dep, stack); err != nil {
			return err
		}
	}

	w.done[f.Path] = f
	debug.LogLoader("loaded %s with %d includes", f.Path, len(f.Includes))
	return nil
}
