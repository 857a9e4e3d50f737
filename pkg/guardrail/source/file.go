package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"mercator-hq/ganymede/pkg/guardrail"
)

// debounceInterval is the quiet period after a file event before a change
// event is emitted, to avoid reload storms from editors that write in
// multiple syscalls.
const debounceInterval = 100 * time.Millisecond

// FileSource loads a guardrail ruleset from a YAML DSL file on disk and
// watches it for changes.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based ruleset source for a single YAML
// file.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger,
	}
}

// Load reads and parses the ruleset file. A missing file, unreadable
// file, or malformed document returns an error; the engine degrades to
// its built-in defaults in that case.
func (s *FileSource) Load(ctx context.Context) (*guardrail.RuleSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset file %q: %w", s.path, err)
	}

	ruleset, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ruleset file %q: %w", s.path, err)
	}

	s.logger.Info("loaded ruleset from file",
		"path", s.path,
		"version", ruleset.Version,
		"check_count", len(ruleset.Checks),
	)

	return ruleset, nil
}

// Parse decodes a YAML DSL document into a RuleSet. Checks missing an
// assert list or on_fail block are legal: an empty assert list always
// passes and a missing on_fail degrades to a warn-only action.
func Parse(data []byte) (*guardrail.RuleSet, error) {
	var ruleset guardrail.RuleSet
	if err := yaml.Unmarshal(data, &ruleset); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if ruleset.Version == "" {
		ruleset.Version = "0.1"
	}

	for i, check := range ruleset.Checks {
		if check.ID == "" {
			return nil, fmt.Errorf("check %d: missing id", i)
		}
		if check.Run.Type == "" {
			return nil, fmt.Errorf("check %q: missing run.type", check.ID)
		}
	}

	return &ruleset, nil
}

// Watch watches the ruleset file for changes using fsnotify. Events are
// debounced. The parent directory is watched rather than the file itself
// so that atomic rename-over-write (the common editor and configmap
// update pattern) keeps working.
func (s *FileSource) Watch(ctx context.Context) (<-chan guardrail.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	eventCh := make(chan guardrail.Event)

	go func() {
		defer close(eventCh)
		defer watcher.Close()

		var debounce *time.Timer
		var pending guardrail.Event

		fire := func() <-chan time.Time {
			if debounce == nil {
				return nil
			}
			return debounce.C
		}

		for {
			select {
			case <-ctx.Done():
				return

			case fsEvent, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(fsEvent.Name) != filepath.Clean(s.path) {
					continue
				}

				pending = guardrail.Event{
					Type: eventType(fsEvent.Op),
					Path: s.path,
				}
				if debounce == nil {
					debounce = time.NewTimer(debounceInterval)
				} else {
					debounce.Reset(debounceInterval)
				}

			case <-fire():
				debounce = nil
				select {
				case eventCh <- pending:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case eventCh <- guardrail.Event{Path: s.path, Error: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return eventCh, nil
}

// eventType maps an fsnotify operation to a source event type.
func eventType(op fsnotify.Op) guardrail.EventType {
	switch {
	case op.Has(fsnotify.Create):
		return guardrail.EventCreated
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return guardrail.EventDeleted
	default:
		return guardrail.EventModified
	}
}
