// Package grouping assigns media files to content types. Cheap folder and
// filename heuristics decide most files; the rest go through catalog
// lookups and, when both a movie and a series look plausible, the
// classify rule engine.
package grouping

import (
	"encoding/json"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/classify"
)

// Type is a content type slot in a Group.
type Type int

const (
	Movie Type = iota
	Series
	Anime
	Music
	numTypes
)

// Types lists every type in slot order.
var Types = []Type{Movie, Series, Anime, Music}

func (t Type) String() string {
	switch t {
	case Movie:
		return "movie"
	case Series:
		return "series"
	case Anime:
		return "anime"
	case Music:
		return "music"
	default:
		return "unknown"
	}
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type slotState uint8

const (
	undecided slotState = iota
	present
	absent
)

// Value is what a slot resolved to. Movie and Anime carry catalog
// candidates, Series carries the detected series name and Music the
// folder the file lives in.
type Value struct {
	Candidates []*catalog.Entry `json:"candidates,omitempty"`
	Name       string           `json:"name,omitempty"`
}

type slot struct {
	state slotState
	value Value
}

// Group is the classification of one file. It is a value type: every
// mutator returns a new Group and leaves the receiver untouched. A slot
// marked absent stays absent.
type Group struct {
	Path     string
	slots    [numTypes]slot
	decision *classify.Decision
}

// NewGroup returns a Group with every slot undecided.
func NewGroup(path string) Group {
	return Group{Path: path}
}

// With marks t present with v. It has no effect on a slot already marked
// absent.
func (g Group) With(t Type, v Value) Group {
	if g.slots[t].state == absent {
		return g
	}
	g.slots[t] = slot{state: present, value: v}
	return g
}

// Without marks t absent.
func (g Group) Without(t Type) Group {
	g.slots[t] = slot{state: absent}
	return g
}

// Decide marks t present with v and every other type absent.
func (g Group) Decide(t Type, v Value) Group {
	for _, other := range Types {
		if other != t {
			g = g.Without(other)
		}
	}
	return g.With(t, v)
}

// WithDecision attaches the rule engine decision that produced g.
func (g Group) WithDecision(d classify.Decision) Group {
	g.decision = &d
	return g
}

// Get returns the value of t and whether the slot is present.
func (g Group) Get(t Type) (Value, bool) {
	s := g.slots[t]
	return s.value, s.state == present
}

// Has reports whether t is present.
func (g Group) Has(t Type) bool {
	return g.slots[t].state == present
}

// Excludes reports whether t was ruled out.
func (g Group) Excludes(t Type) bool {
	return g.slots[t].state == absent
}

// Types returns the present types in slot order.
func (g Group) Types() []Type {
	var out []Type
	for _, t := range Types {
		if g.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Empty reports whether no type is present, i.e. the file is unclassified.
func (g Group) Empty() bool {
	return len(g.Types()) == 0
}

// Ambiguous reports whether more than one type is present.
func (g Group) Ambiguous() bool {
	return len(g.Types()) > 1
}

// Decision returns the rule engine decision, if the engine ran.
func (g Group) Decision() (classify.Decision, bool) {
	if g.decision == nil {
		return classify.Decision{}, false
	}
	return *g.decision, true
}

type groupJSON struct {
	Path     string             `json:"path"`
	Types    []Type             `json:"types"`
	Excluded []Type             `json:"excluded,omitempty"`
	Values   map[Type]Value     `json:"values,omitempty"`
	Decision *classify.Decision `json:"decision,omitempty"`
}

func (g Group) MarshalJSON() ([]byte, error) {
	out := groupJSON{
		Path:     g.Path,
		Types:    g.Types(),
		Decision: g.decision,
	}
	if out.Types == nil {
		out.Types = []Type{}
	}
	for _, t := range Types {
		switch g.slots[t].state {
		case absent:
			out.Excluded = append(out.Excluded, t)
		case present:
			if out.Values == nil {
				out.Values = make(map[Type]Value)
			}
			out.Values[t] = g.slots[t].value
		}
	}
	return json.Marshal(out)
}
