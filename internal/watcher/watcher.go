// Package watcher classifies media files as they appear in watched
// directories.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/Nomadcxx/mediamatch/internal/logging"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

type FileEvent struct {
	Type EventType
	Path string
}

// Handler receives events for media files only.
type Handler interface {
	HandleFileEvent(event FileEvent) error
	IsMediaFile(path string) bool
}

// Watcher forwards fsnotify events for media files to a Handler. In
// recursive mode directories created after Watch are picked up too.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	logger    *logging.Logger
	recursive bool
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWatcher(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		logger:    logging.Nop(),
		recursive: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds roots, and in recursive mode every non-hidden directory below
// them.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if err := w.add(root); err != nil {
			return err
		}
		w.logger.Info("watcher", "Watching directory", logging.F("path", root), logging.F("recursive", w.recursive))
	}
	return nil
}

func (w *Watcher) add(root string) error {
	if !w.recursive {
		if err := w.fsWatcher.Add(root); err != nil {
			return fmt.Errorf("unable to watch %s: %w", root, err)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			if path == root {
				return fmt.Errorf("unable to watch %s: %w", root, err)
			}
			return nil
		case !d.IsDir():
			return nil
		case path != root && hidden(path):
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.logger.Debug("watcher", "Added directory", logging.F("path", path))
		return nil
	})
}

// Start dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.dispatch(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher", "fsnotify error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) dispatch(event fsnotify.Event) {
	if event.Has(fsnotify.Create) && w.recursive && isDir(event.Name) {
		if hidden(event.Name) {
			return
		}
		if err := w.add(event.Name); err != nil {
			w.logger.Warn("watcher", "Unable to watch new directory", logging.F("path", event.Name), logging.F("error", err.Error()))
		}
		return
	}

	typ, ok := eventType(event.Op)
	if !ok || !w.handler.IsMediaFile(event.Name) {
		return
	}
	w.logger.Debug("watcher", "Media event", logging.F("type", typ), logging.F("file", filepath.Base(event.Name)))
	if err := w.handler.HandleFileEvent(FileEvent{Type: typ, Path: event.Name}); err != nil {
		w.logger.Error("watcher", "Handler failed", err, logging.F("path", event.Name))
	}
}

// eventType maps an fsnotify op to an EventType. Chmod-only events are
// dropped.
func eventType(op fsnotify.Op) (EventType, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return EventDelete, true
	case op.Has(fsnotify.Rename):
		return EventMove, true
	case op.Has(fsnotify.Write):
		return EventWrite, true
	case op.Has(fsnotify.Create):
		return EventCreate, true
	}
	return "", false
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
