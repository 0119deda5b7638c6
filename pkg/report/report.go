package report

import (
	"fmt"
	"time"

	"github.com/netreclaim/reclaim/pkg/reclaim"
	"github.com/netreclaim/reclaim/pkg/util"
)

// Sources names the reference data an analysis was reconciled against.
type Sources struct {
	AddressPlan    string `json:"address_plan,omitempty" yaml:"address_plan,omitempty"`
	ActiveSessions string `json:"active_sessions,omitempty" yaml:"active_sessions,omitempty"`
}

// Options controls Build.
type Options struct {
	// Only restricts the report to these category keys, in report order.
	// Empty means every category.
	Only []string

	Device  string
	Sources Sources

	// Now stamps the report; time.Now when nil.
	Now func() time.Time
}

// Entry is one member of a section with its commands.
type Entry struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Print   string `json:"print" yaml:"print"`
	Disable string `json:"disable" yaml:"disable"`
}

// Section is the listing of one category.
type Section struct {
	Key         string  `json:"key" yaml:"key"`
	Description string  `json:"description" yaml:"description"`
	Count       int     `json:"count" yaml:"count"`
	Entries     []Entry `json:"entries" yaml:"entries"`
}

// Report is a rendered analysis.
type Report struct {
	Device      string            `json:"device,omitempty" yaml:"device,omitempty"`
	Identity    string            `json:"identity,omitempty" yaml:"identity,omitempty"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Sources     Sources           `json:"sources" yaml:"sources"`
	Inventory   reclaim.Inventory `json:"inventory" yaml:"inventory"`
	Sections    []Section         `json:"sections" yaml:"sections"`
	Total       int               `json:"total" yaml:"total"`
}

// Build renders rec. An unknown key in opts.Only is an error.
func Build(rec reclaim.Record, opts Options) (*Report, error) {
	selected, err := selectCategories(opts.Only)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	r := &Report{
		Device:      opts.Device,
		Identity:    rec.Identity,
		GeneratedAt: now(),
		Sources:     opts.Sources,
		Inventory:   rec.Inventory,
	}
	for _, c := range selected {
		members := c.members(rec)
		sec := Section{
			Key:         c.key,
			Description: c.description,
			Count:       len(members),
			Entries:     make([]Entry, 0, len(members)),
		}
		for _, m := range members {
			kind := rec.SingleInterfaces[m]
			if c.key != KeyIntSingle {
				kind = reclaim.KindUnknown
			}
			sec.Entries = append(sec.Entries, Entry{
				Name:    m,
				Kind:    string(kind),
				Print:   render(c.print, m, kind),
				Disable: render(c.disable, m, kind),
			})
		}
		r.Total += sec.Count
		r.Sections = append(r.Sections, sec)
	}
	return r, nil
}

func selectCategories(only []string) ([]category, error) {
	if len(only) == 0 {
		return categories, nil
	}
	want := make(map[string]bool, len(only))
	for _, k := range only {
		if Description(k) == "" {
			return nil, fmt.Errorf("unknown report category %q (valid: %v): %w", k, Keys(), util.ErrInvalidArgument)
		}
		want[k] = true
	}
	var out []category
	for _, c := range categories {
		if want[c.key] {
			out = append(out, c)
		}
	}
	return out, nil
}

// Section returns the section for key, or nil when it was not selected.
func (r *Report) Section(key string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Key == key {
			return &r.Sections[i]
		}
	}
	return nil
}

// Counts returns the member count of every category of rec by key.
func Counts(rec reclaim.Record) map[string]int {
	out := make(map[string]int, len(categories))
	for _, c := range categories {
		out[c.key] = len(c.members(rec))
	}
	return out
}
