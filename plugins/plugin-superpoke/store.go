package pluginsuperpoke

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/database/config"
)

const (
	minWeight = 1
	maxWeight = 100
)

var (
	ErrInvalidEntry    = errors.New("invalid command entry")
	ErrEmptyCommand    = errors.New("command is empty")
	ErrInvalidWeight   = fmt.Errorf("weight must be between %d and %d", minWeight, maxWeight)
	ErrIndexOutOfRange = errors.New("index out of range")
)

// CommandEntry is one candidate reply to a poke.
type CommandEntry struct {
	Command string `yaml:"command"`
	Weight  int    `yaml:"weight"`
}

// Validate checks the entry invariants: non-empty command and weight in [1, 100].
func (e CommandEntry) Validate() error {
	if strings.TrimSpace(e.Command) == "" {
		return ErrEmptyCommand
	}
	if e.Weight < minWeight || e.Weight > maxWeight {
		return ErrInvalidWeight
	}
	return nil
}

// dataFile is the on-disk layout. Superpoke_Command is the single-command format written by older versions.
type dataFile struct {
	Commands      []CommandEntry `yaml:"commands"`
	LegacyCommand string         `yaml:"Superpoke_Command,omitempty"`
}

// LoadEntries reads the command list at path. A missing or empty file yields an empty list.
func LoadEntries(path string) ([]CommandEntry, error) {
	var f dataFile
	if err := config.ReadFile(path, &f); err != nil {
		return nil, err
	}
	if len(f.Commands) == 0 && strings.TrimSpace(f.LegacyCommand) != "" {
		return []CommandEntry{{Command: strings.TrimSpace(f.LegacyCommand), Weight: minWeight}}, nil
	}
	for i, e := range f.Commands {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w #%d: %w", ErrInvalidEntry, i+1, err)
		}
	}
	if f.Commands == nil {
		return []CommandEntry{}, nil
	}
	return f.Commands, nil
}

// SaveEntries writes the full list at path in order.
func SaveEntries(path string, entries []CommandEntry) error {
	if entries == nil {
		entries = []CommandEntry{}
	}
	return config.SaveFile(path, &dataFile{Commands: entries})
}

// commandList is the in-memory list backed by a file. Every mutation persists the whole list;
// when the write fails the list is left unchanged.
type commandList struct {
	mu      sync.RWMutex
	path    string
	once    sync.Once
	entries []CommandEntry
	loadErr error
}

func newCommandList(path string) *commandList {
	return &commandList{path: path}
}

// ensure loads the file on first use. A load error leaves an empty list and is kept for reporting.
func (l *commandList) ensure() {
	l.once.Do(func() {
		entries, err := LoadEntries(l.path)
		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.loadErr = err
			entries = []CommandEntry{}
		}
		l.entries = entries
	})
}

// LoadErr returns the error from the initial load, if any.
func (l *commandList) LoadErr() error {
	l.ensure()
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadErr
}

// Entries returns a copy of the list.
func (l *commandList) Entries() []CommandEntry {
	l.ensure()
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]CommandEntry(nil), l.entries...)
}

func (l *commandList) mutate(fn func(cur []CommandEntry) ([]CommandEntry, error)) error {
	l.ensure()
	l.mu.Lock()
	defer l.mu.Unlock()
	next, err := fn(append([]CommandEntry(nil), l.entries...))
	if err != nil {
		return err
	}
	if err := SaveEntries(l.path, next); err != nil {
		return err
	}
	l.entries = next
	l.loadErr = nil
	return nil
}

// Add appends an entry.
func (l *commandList) Add(command string, weight int) error {
	e := CommandEntry{Command: strings.TrimSpace(command), Weight: weight}
	if err := e.Validate(); err != nil {
		return err
	}
	return l.mutate(func(cur []CommandEntry) ([]CommandEntry, error) {
		return append(cur, e), nil
	})
}

// SetWeight changes the weight of the entry at the zero-based index i.
func (l *commandList) SetWeight(i, weight int) error {
	if weight < minWeight || weight > maxWeight {
		return ErrInvalidWeight
	}
	return l.mutate(func(cur []CommandEntry) ([]CommandEntry, error) {
		if i < 0 || i >= len(cur) {
			return nil, ErrIndexOutOfRange
		}
		cur[i].Weight = weight
		return cur, nil
	})
}

// Delete removes the entry at the zero-based index i and returns it.
func (l *commandList) Delete(i int) (CommandEntry, error) {
	var removed CommandEntry
	err := l.mutate(func(cur []CommandEntry) ([]CommandEntry, error) {
		if i < 0 || i >= len(cur) {
			return nil, ErrIndexOutOfRange
		}
		removed = cur[i]
		return append(cur[:i], cur[i+1:]...), nil
	})
	return removed, err
}

// Replace sets the list to a single entry of weight 1.
func (l *commandList) Replace(command string) error {
	e := CommandEntry{Command: strings.TrimSpace(command), Weight: minWeight}
	if err := e.Validate(); err != nil {
		return err
	}
	return l.mutate(func([]CommandEntry) ([]CommandEntry, error) {
		return []CommandEntry{e}, nil
	})
}

// Clear empties the list.
func (l *commandList) Clear() error {
	return l.mutate(func([]CommandEntry) ([]CommandEntry, error) {
		return []CommandEntry{}, nil
	})
}
