package compose

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	PoolMorning  = "morning"
	PoolReminder = "reminder"
)

// Rand is the subset of math/rand/v2.Rand that Pick needs.
type Rand interface {
	IntN(n int) int
}

// Pool is a named, non-empty set of interchangeable message variants.
type Pool struct {
	name     string
	variants []string
}

// NewPool builds a pool, dropping blank variants. A pool with no usable
// variants is rejected.
func NewPool(name string, variants ...string) (Pool, error) {
	name = strings.TrimSpace(name)
	kept := make([]string, 0, len(variants))
	for _, v := range variants {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return Pool{}, fmt.Errorf("message pool %q is empty", name)
	}
	return Pool{name: name, variants: kept}, nil
}

func (p Pool) Name() string { return p.name }

func (p Pool) Len() int { return len(p.variants) }

// Variants returns a copy of the pool contents.
func (p Pool) Variants() []string {
	return append([]string(nil), p.variants...)
}

// Pick returns one variant chosen uniformly by r. It panics on the zero Pool,
// which NewPool never returns.
func Pick(p Pool, r Rand) string {
	if len(p.variants) == 0 {
		panic("compose: pick from empty pool")
	}
	return p.variants[r.IntN(len(p.variants))]
}

var defaultMorning = []string{
	"Good morning! A fresh day for {{.Project}}. Every small step you take on {{.Description}} adds up, and today is a great day to take one.",
	"Rise and shine! {{.Project}} is waiting for your best ideas. Pick one thing that moves it forward and start there.",
	"Morning! Remember why you started {{.Project}}. That spark is still there, so give it an hour of focused work today.",
	"Hello and good morning! Today is another chance to build {{.Project}} into something great. You've got this.",
	"Good morning, builder! {{.Project}} needs your attention today. One focused session beats a week of planning.",
}

var defaultReminder = []string{
	"Just checking in: how is {{.Project}} coming along? Don't forget to give it some time today.",
	"Quick reminder: {{.Project}} won't build itself. Block out a little time and make some progress.",
	"{{.Project}} is calling! A short session now keeps the momentum going.",
	"Friendly nudge: {{.Project}} is waiting for your magic touch. Your vision is worth the effort.",
	"Time for {{.Project}}! Even thirty minutes today will make tomorrow easier.",
}

// DefaultFocusAreas lists the suggestions shown in the morning layout and the
// narration script.
var DefaultFocusAreas = []string{
	"Solar panel efficiency research",
	"Renewable energy innovation",
	"Environmental impact analysis",
	"Market research and competitor analysis",
	"Partnership development",
	"Funding strategy and investor outreach",
}

// DefaultPools returns the built-in message pools keyed by name.
func DefaultPools() map[string]Pool {
	morning, _ := NewPool(PoolMorning, defaultMorning...)
	reminder, _ := NewPool(PoolReminder, defaultReminder...)
	return map[string]Pool{
		PoolMorning:  morning,
		PoolReminder: reminder,
	}
}

type poolFile struct {
	Pools      map[string][]string `yaml:"pools"`
	FocusAreas []string            `yaml:"focus_areas"`
}

// Catalog is the merged set of pools and focus areas a Composer draws from.
type Catalog struct {
	Pools      map[string]Pool
	FocusAreas []string
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{Pools: DefaultPools(), FocusAreas: append([]string(nil), DefaultFocusAreas...)}
}

// LoadCatalog reads a YAML pool file and merges it over the built-ins. An empty
// path returns the built-in catalog. Pools named in the file replace the
// built-in pool of the same name; an empty pool in the file is an error.
func LoadCatalog(path string) (Catalog, error) {
	catalog := DefaultCatalog()
	path = strings.TrimSpace(path)
	if path == "" {
		return catalog, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read message pools: %w", err)
	}
	var file poolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("parse message pools %s: %w", path, err)
	}
	var errs []error
	for name, variants := range file.Pools {
		pool, err := NewPool(name, variants...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		catalog.Pools[pool.Name()] = pool
	}
	if len(errs) > 0 {
		return Catalog{}, errors.Join(errs...)
	}
	if len(file.FocusAreas) > 0 {
		catalog.FocusAreas = append([]string(nil), file.FocusAreas...)
	}
	return catalog, nil
}
