package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// SnapshotVersion is the snapshot format this build reads and writes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned for snapshots written in another format.
var ErrSnapshotVersion = errors.New("unsupported catalog snapshot version")

// Provider supplies the entries of one catalog kind.
type Provider interface {
	Load(ctx context.Context, kind Kind) ([]Entry, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, kind Kind) ([]Entry, error)

func (f ProviderFunc) Load(ctx context.Context, kind Kind) ([]Entry, error) {
	return f(ctx, kind)
}

// StaticProvider serves entries held in memory.
type StaticProvider map[Kind][]Entry

func (p StaticProvider) Load(_ context.Context, kind Kind) ([]Entry, error) {
	return p[kind], nil
}

// Snapshot is the on-disk catalog format.
type Snapshot struct {
	Version int     `json:"version"`
	Movies  []Entry `json:"movies"`
	Series  []Entry `json:"series"`
	Anime   []Entry `json:"anime"`
}

// Entries returns the list for one kind.
func (s *Snapshot) Entries(kind Kind) []Entry {
	switch kind {
	case KindMovie:
		return s.Movies
	case KindSeries:
		return s.Series
	case KindAnime:
		return s.Anime
	}
	return nil
}

// DecodeSnapshot reads and validates a snapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode catalog snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	for _, kind := range Kinds {
		entries := snap.Entries(kind)
		for i := range entries {
			entries[i].Kind = kind
		}
	}
	return &snap, nil
}

// ReadSnapshot loads a snapshot file from fs.
func ReadSnapshot(fs afero.Fs, path string) (*Snapshot, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog snapshot: %w", err)
	}
	defer f.Close()
	return DecodeSnapshot(f)
}

// WriteSnapshot stores snap at path, stamping the current version.
func WriteSnapshot(fs afero.Fs, path string, snap *Snapshot) error {
	snap.Version = SnapshotVersion
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog snapshot: %w", err)
	}
	return nil
}

// FileProvider reads entries from a JSON snapshot file.
type FileProvider struct {
	Fs   afero.Fs
	Path string
}

// NewFileProvider returns a provider for the snapshot at path on the OS
// filesystem.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Fs: afero.NewOsFs(), Path: path}
}

func (p *FileProvider) Load(ctx context.Context, kind Kind) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := ReadSnapshot(p.Fs, p.Path)
	if err != nil {
		return nil, err
	}
	return snap.Entries(kind), nil
}
