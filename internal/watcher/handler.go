package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/grouping"
	"github.com/Nomadcxx/mediamatch/internal/logging"
	"github.com/Nomadcxx/mediamatch/internal/naming"
)

// Classifier is the part of grouping.Grouper the handler needs.
type Classifier interface {
	Classify(ctx context.Context, path string) (grouping.Group, error)
}

// Tagger records a resolved entry for a file.
type Tagger interface {
	Tag(ctx context.Context, path string, entry catalog.Entry) error
}

// ResultFunc receives every finished classification.
type ResultFunc func(path string, grp grouping.Group, err error)

// ClassifyHandler classifies files once they stop changing for the
// debounce period.
type ClassifyHandler struct {
	classifier Classifier
	tagger     Tagger
	onResult   ResultFunc
	debounce   time.Duration
	logger     *logging.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	stats   Stats
}

// Stats counts classifications by outcome.
type Stats struct {
	Classified   map[grouping.Type]int64
	Ambiguous    int64
	Unclassified int64
	Errors       int64
	LastFile     string
	LastAt       time.Time
}

type HandlerConfig struct {
	Classifier Classifier
	// Tagger, when set, stores every unambiguous result that has a catalog
	// candidate.
	Tagger   Tagger
	OnResult ResultFunc
	Debounce time.Duration
	Logger   *logging.Logger
}

func NewClassifyHandler(cfg HandlerConfig) *ClassifyHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &ClassifyHandler{
		classifier: cfg.Classifier,
		tagger:     cfg.Tagger,
		onResult:   cfg.OnResult,
		debounce:   cfg.Debounce,
		logger:     logger,
		pending:    make(map[string]*time.Timer),
		stats:      Stats{Classified: make(map[grouping.Type]int64)},
	}
}

func (h *ClassifyHandler) IsMediaFile(path string) bool {
	return naming.IsVideo(path) || naming.IsAudio(path)
}

// HandleFileEvent (re)starts the debounce timer for a media file. A delete
// or a rename away from the path cancels it.
func (h *ClassifyHandler) HandleFileEvent(event FileEvent) error {
	if !h.IsMediaFile(event.Path) {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if timer, exists := h.pending[event.Path]; exists {
		timer.Stop()
		delete(h.pending, event.Path)
	}
	if event.Type == EventDelete || event.Type == EventMove {
		return nil
	}
	h.pending[event.Path] = time.AfterFunc(h.debounce, func() {
		h.process(event.Path)
	})
	return nil
}

func (h *ClassifyHandler) process(path string) {
	h.mu.Lock()
	delete(h.pending, path)
	h.mu.Unlock()

	ctx := context.Background()
	grp, err := h.classifier.Classify(ctx, path)
	h.record(path, grp, err)

	switch {
	case err != nil:
		h.logger.Error("handler", "Classification failed", err, logging.F("path", path))
	case grp.Empty():
		h.logger.Info("handler", "File left unclassified", logging.F("file", filepath.Base(path)))
	default:
		h.logger.Info("handler", "File classified",
			logging.F("file", filepath.Base(path)),
			logging.F("types", grp.Types()))
		if err := h.tag(ctx, grp); err != nil {
			h.logger.Warn("handler", "Failed to tag file", logging.F("path", path), logging.F("error", err.Error()))
		}
	}

	if h.onResult != nil {
		h.onResult(path, grp, err)
	}
}

func (h *ClassifyHandler) tag(ctx context.Context, grp grouping.Group) error {
	if h.tagger == nil || grp.Ambiguous() {
		return nil
	}
	for _, t := range grp.Types() {
		v, _ := grp.Get(t)
		if len(v.Candidates) > 0 {
			return h.tagger.Tag(ctx, grp.Path, *v.Candidates[0])
		}
	}
	return nil
}

func (h *ClassifyHandler) record(path string, grp grouping.Group, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stats.LastFile = path
	h.stats.LastAt = time.Now()
	switch {
	case err != nil:
		h.stats.Errors++
	case grp.Empty():
		h.stats.Unclassified++
	case grp.Ambiguous():
		h.stats.Ambiguous++
	default:
		h.stats.Classified[grp.Types()[0]]++
	}
}

// Stats returns a copy of the counters.
func (h *ClassifyHandler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.stats
	s.Classified = make(map[grouping.Type]int64, len(h.stats.Classified))
	for k, v := range h.stats.Classified {
		s.Classified[k] = v
	}
	return s
}

// Pending returns the number of files waiting for their debounce timer.
func (h *ClassifyHandler) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// Shutdown cancels pending classifications.
func (h *ClassifyHandler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for path, timer := range h.pending {
		timer.Stop()
		delete(h.pending, path)
	}
}
