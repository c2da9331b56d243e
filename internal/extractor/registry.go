package extractor

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"StockPulse/internal/domain/models"
)

// Snapshot is an immutable view of the known-ticker registry and the
// stoplist of common words that collide with valid symbols. Extraction and
// aggregation take snapshots explicitly, so substituting one in tests is
// trivial and results are deterministic under a given snapshot.
type Snapshot struct {
	tickers  map[string]models.Ticker
	stoplist map[string]struct{}
}

// NewSnapshot builds a snapshot from ticker metadata and stoplist words.
// Symbols and stoplist entries are upper-cased.
func NewSnapshot(tickers []models.Ticker, stoplist []string) *Snapshot {
	s := &Snapshot{
		tickers:  make(map[string]models.Ticker, len(tickers)),
		stoplist: make(map[string]struct{}, len(stoplist)),
	}
	for _, t := range tickers {
		t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
		if t.Symbol == "" {
			continue
		}
		s.tickers[t.Symbol] = t
	}
	for _, w := range stoplist {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" {
			s.stoplist[w] = struct{}{}
		}
	}
	return s
}

// Known reports whether symbol is in the registry.
func (s *Snapshot) Known(symbol string) bool {
	_, ok := s.tickers[symbol]
	return ok
}

// Stopped reports whether symbol is stoplisted.
func (s *Snapshot) Stopped(symbol string) bool {
	_, ok := s.stoplist[symbol]
	return ok
}

// Lookup returns registry metadata for symbol.
func (s *Snapshot) Lookup(symbol string) (models.Ticker, bool) {
	t, ok := s.tickers[strings.ToUpper(symbol)]
	return t, ok
}

// Tickers returns all registry entries sorted by symbol.
func (s *Snapshot) Tickers() []models.Ticker {
	out := make([]models.Ticker, 0, len(s.tickers))
	for _, t := range s.tickers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Industries returns the distinct industry names, sorted.
func (s *Snapshot) Industries() []string {
	return s.distinct(func(t models.Ticker) string { return t.Industry })
}

// Sectors returns the distinct sector names, sorted.
func (s *Snapshot) Sectors() []string {
	return s.distinct(func(t models.Ticker) string { return t.Sector })
}

func (s *Snapshot) distinct(key func(models.Ticker) string) []string {
	seen := make(map[string]struct{})
	for _, t := range s.tickers {
		if k := key(t); k != "" {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type registryFile struct {
	Tickers []models.Ticker `yaml:"tickers"`
}

type stoplistFile struct {
	Words []string `yaml:"words"`
}

// LoadSnapshot reads ticker registry and stoplist YAML files. The stoplist
// path may be empty.
func LoadSnapshot(tickersPath, stoplistPath string) (*Snapshot, error) {
	b, err := os.ReadFile(tickersPath)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var rf registryFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	var sf stoplistFile
	if stoplistPath != "" {
		b, err := os.ReadFile(stoplistPath)
		if err != nil {
			return nil, fmt.Errorf("read stoplist: %w", err)
		}
		if err := yaml.Unmarshal(b, &sf); err != nil {
			return nil, fmt.Errorf("parse stoplist: %w", err)
		}
	}

	return NewSnapshot(rf.Tickers, sf.Words), nil
}

// Registry holds the current snapshot and supports reload without restart.
// Readers always see a complete snapshot, never a half-reloaded one.
type Registry struct {
	tickersPath  string
	stoplistPath string
	snap         atomic.Pointer[Snapshot]
}

// NewRegistry loads the initial snapshot from the given paths.
func NewRegistry(tickersPath, stoplistPath string) (*Registry, error) {
	snap, err := LoadSnapshot(tickersPath, stoplistPath)
	if err != nil {
		return nil, err
	}
	r := &Registry{tickersPath: tickersPath, stoplistPath: stoplistPath}
	r.snap.Store(snap)
	return r, nil
}

// NewStaticRegistry wraps a fixed snapshot; Reload is a no-op. Used in tests
// and when registry files are not configured.
func NewStaticRegistry(snap *Snapshot) *Registry {
	r := &Registry{}
	r.snap.Store(snap)
	return r
}

// Snapshot returns the current immutable snapshot.
func (r *Registry) Snapshot() *Snapshot {
	return r.snap.Load()
}

// Reload re-reads the registry files and swaps in the new snapshot. On
// error the previous snapshot stays active.
func (r *Registry) Reload() error {
	if r.tickersPath == "" {
		return nil
	}
	snap, err := LoadSnapshot(r.tickersPath, r.stoplistPath)
	if err != nil {
		return err
	}
	r.snap.Store(snap)
	return nil
}
