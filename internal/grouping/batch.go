package grouping

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/Nomadcxx/mediamatch/internal/logging"
	"github.com/Nomadcxx/mediamatch/internal/naming"
)

// Pool runs units of work. *errgroup.Group satisfies it.
type Pool interface {
	Go(func() error)
	Wait() error
}

// Failure is a file whose classification aborted.
type Failure struct {
	Path string
	Err  error
}

// Result is the outcome of a batch. Groups holds the classified files in
// input order; failed files are left out of Groups and listed in Failed.
type Result struct {
	Groups []Group
	Failed []Failure
}

// Buckets partitions the batch by type. An ambiguous file appears in every
// bucket it is present in; unclassified files are not listed.
func (r Result) Buckets() map[Type][]Group {
	out := make(map[Type][]Group)
	for _, grp := range r.Groups {
		for _, t := range grp.Types() {
			out[t] = append(out[t], grp)
		}
	}
	return out
}

// Unclassified returns the paths that no heuristic could place, followed by
// the paths that failed.
func (r Result) Unclassified() []string {
	var out []string
	for _, grp := range r.Groups {
		if grp.Empty() {
			out = append(out, grp.Path)
		}
	}
	for _, f := range r.Failed {
		out = append(out, f.Path)
	}
	return out
}

type outcome struct {
	group Group
	err   error
}

// ClassifyBatch classifies paths. With a nil pool files run one after the
// other; otherwise each file is submitted to pool. A failing file is logged
// and reported in Result.Failed without affecting the others.
func (g *Grouper) ClassifyBatch(ctx context.Context, paths []string, pool Pool) Result {
	siblings := g.siblings(paths)

	var mu sync.Mutex
	done := make(map[string]outcome, len(paths))
	unit := func(path string) func() error {
		return func() error {
			grp, err := g.classify(ctx, path, siblings[filepath.Dir(path)])
			if err != nil {
				g.logger.Error("grouping", "Classification failed, file left unclassified", err, logging.F("path", path))
			}
			mu.Lock()
			done[path] = outcome{group: grp, err: err}
			mu.Unlock()
			// Failures are per file; returning nil keeps an errgroup
			// context from cancelling the rest of the batch.
			return nil
		}
	}

	queued := make(map[string]bool, len(paths))
	for _, path := range paths {
		if queued[path] {
			continue
		}
		queued[path] = true
		if pool == nil {
			_ = unit(path)()
			continue
		}
		pool.Go(unit(path))
	}
	if pool != nil {
		if err := pool.Wait(); err != nil {
			g.logger.Error("grouping", "Worker pool reported an error", err)
		}
	}

	var res Result
	emitted := make(map[string]bool, len(paths))
	for _, path := range paths {
		if emitted[path] {
			continue
		}
		emitted[path] = true
		o, ok := done[path]
		switch {
		case !ok:
			res.Failed = append(res.Failed, Failure{Path: path, Err: context.Canceled})
		case o.err != nil:
			res.Failed = append(res.Failed, Failure{Path: path, Err: o.err})
		default:
			res.Groups = append(res.Groups, o.group)
		}
	}
	return res
}

// siblings lists the video files of every folder touched by paths, keyed
// by folder. Folders that cannot be read fall back to the batch's own
// files in that folder.
func (g *Grouper) siblings(paths []string) map[string][]string {
	byDir := make(map[string]map[string]bool)
	for _, path := range paths {
		dir := filepath.Dir(path)
		if byDir[dir] == nil {
			byDir[dir] = make(map[string]bool)
			if infos, err := afero.ReadDir(g.fs, dir); err == nil {
				for _, fi := range infos {
					if !fi.IsDir() && naming.IsVideo(fi.Name()) {
						byDir[dir][naming.BaseName(fi.Name())] = true
					}
				}
			}
		}
		byDir[dir][naming.BaseName(path)] = true
	}

	out := make(map[string][]string, len(byDir))
	for dir, names := range byDir {
		list := make([]string, 0, len(names))
		for n := range names {
			list = append(list, n)
		}
		sort.Strings(list)
		out[dir] = list
	}
	return out
}
