package market

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rickgao/orderbook-recorder/internal/model"
)

// Errors
var (
	ErrEmptyRegistry       = errors.New("registry has no instruments")
	ErrDuplicateIdentifier = errors.New("identifier mapped to more than one label")
)

// Instruments is the configuration shape: market name → side name → identifier.
type Instruments map[string]map[string]string

// Registry is the immutable two-way mapping between labels and identifiers.
type Registry struct {
	byID    map[string]model.Label
	byLabel map[model.Label]string
	ids     []string // ordered by (market, side)
}

// NewRegistry validates instruments and builds a Registry.
func NewRegistry(instruments Instruments) (*Registry, error) {
	r := &Registry{
		byID:    make(map[string]model.Label),
		byLabel: make(map[model.Label]string),
	}

	labels := make([]model.Label, 0)
	for marketName, sides := range instruments {
		if strings.TrimSpace(marketName) == "" {
			return nil, errors.New("instrument market name is required")
		}
		if len(sides) == 0 {
			return nil, fmt.Errorf("market %q has no sides", marketName)
		}
		for sideName, id := range sides {
			if strings.TrimSpace(sideName) == "" {
				return nil, fmt.Errorf("market %q: side name is required", marketName)
			}
			id = strings.TrimSpace(id)
			if id == "" {
				return nil, fmt.Errorf("market %q side %q: identifier is required", marketName, sideName)
			}

			label := model.Label{Market: marketName, Side: sideName}
			if prev, ok := r.byID[id]; ok {
				return nil, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateIdentifier, id, prev, label)
			}
			r.byID[id] = label
			r.byLabel[label] = id
			labels = append(labels, label)
		}
	}

	if len(labels) == 0 {
		return nil, ErrEmptyRegistry
	}

	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Market != labels[j].Market {
			return labels[i].Market < labels[j].Market
		}
		return labels[i].Side < labels[j].Side
	})
	r.ids = make([]string, len(labels))
	for i, l := range labels {
		r.ids[i] = r.byLabel[l]
	}

	return r, nil
}

// instrumentsFile is the on-disk shape of a standalone instruments file.
type instrumentsFile struct {
	Instruments Instruments `yaml:"instruments"`
}

// LoadFile reads and validates a standalone instruments YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instruments file: %w", err)
	}

	var f instrumentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse instruments yaml: %w", err)
	}

	return NewRegistry(f.Instruments)
}

// Lookup returns the label for an identifier.
func (r *Registry) Lookup(id string) (model.Label, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// Resolve returns the label for an identifier, or model.UnknownLabel.
func (r *Registry) Resolve(id string) model.Label {
	if l, ok := r.byID[id]; ok {
		return l
	}
	return model.UnknownLabel
}

// Identifier returns the subscription identifier for a label.
func (r *Registry) Identifier(label model.Label) (string, bool) {
	id, ok := r.byLabel[label]
	return id, ok
}

// Identifiers returns every identifier ordered by label. The slice is a copy.
func (r *Registry) Identifiers() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Labels returns every label ordered by (market, side).
func (r *Registry) Labels() []model.Label {
	out := make([]model.Label, len(r.ids))
	for i, id := range r.ids {
		out[i] = r.byID[id]
	}
	return out
}

// Len returns the number of instruments.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Partition splits the identifiers round-robin into at most n groups,
// one per feed connection. Empty groups are never returned.
func (r *Registry) Partition(n int) [][]string {
	if n < 1 {
		n = 1
	}
	if n > len(r.ids) {
		n = len(r.ids)
	}

	groups := make([][]string, n)
	for i, id := range r.ids {
		groups[i%n] = append(groups[i%n], id)
	}
	return groups
}
