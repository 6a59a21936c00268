// Package producer defines the drawing-source contract: a named generator
// that turns loosely typed options into one path document, or into a named
// set of single-color documents for multi-layer output. Producers are looked
// up through an explicit registry rather than string-keyed dynamic dispatch,
// so an unknown name fails fast at the call site.
package producer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/banshee-data/polargraph/internal/path"
)

// Options carries generator parameters by name. Values arrive as JSON-ish
// scalars; the accessor helpers coerce and fall back to defaults.
type Options map[string]any

// Float returns the named option as a float64, or def when absent or of an
// unusable type.
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Int returns the named option as an int, or def.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// String returns the named option as a string, or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Layer is one element of a multi-layer result, plotted as its own
// single-color pass.
type Layer struct {
	Name  string
	Color string
	Doc   *path.Document
}

// Result holds a producer's output: either a single document or a set of
// named layers, never both.
type Result struct {
	Doc    *path.Document
	Layers []Layer
}

// MultiLayer reports whether the result is a named layer set.
func (r Result) MultiLayer() bool { return len(r.Layers) > 0 }

// Single wraps one document as a Result.
func Single(doc *path.Document) Result { return Result{Doc: doc} }

// Info describes a registered producer for listing to a caller.
type Info struct {
	ID          string
	Name        string
	Description string
}

// Producer generates a drawing from options.
type Producer interface {
	Info() Info
	Produce(opts Options) (Result, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Producer)
)

// Register adds a producer under its Info ID. Registering a duplicate ID
// panics: it is a programming error, caught at init time.
func Register(p Producer) {
	id := p.Info().ID
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[id]; exists {
		panic(fmt.Sprintf("producer: duplicate registration for %q", id))
	}
	registry[id] = p
}

// Lookup returns the producer registered under id.
func Lookup(id string) (Producer, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[id]
	return p, ok
}

// Generate looks up a producer and runs it in one step.
func Generate(id string, opts Options) (Result, error) {
	p, ok := Lookup(id)
	if !ok {
		return Result{}, fmt.Errorf("producer: unknown generator %q", id)
	}
	return p.Produce(opts)
}

// List returns Info for every registered producer, sorted by ID.
func List() []Info {
	registryMu.RLock()
	defer registryMu.RUnlock()
	infos := make([]Info, 0, len(registry))
	for _, p := range registry {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
