package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Nomadcxx/mediamatch/internal/collation"
	"github.com/Nomadcxx/mediamatch/internal/naming"
)

var (
	trailingQualifierRegex = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
	trailingYearRegex      = regexp.MustCompile(`\s+(?:19|20)\d{2}$`)
)

// IndexEntry is one searchable row: a single effective name of an Entry in
// its lenient and strict forms. Keys are computed on first use and cached.
type IndexEntry struct {
	Entry       *Entry
	Name        string
	LenientName string
	StrictName  string

	collator   *collation.Collator
	once       sync.Once
	lenientKey []collation.Key
	strictKey  []collation.Key
}

func (ie *IndexEntry) computeKeys() {
	ie.once.Do(func() {
		ie.strictKey = ie.collator.Keys(ie.StrictName)
		if ie.LenientName == ie.StrictName {
			ie.lenientKey = ie.strictKey
		} else {
			ie.lenientKey = ie.collator.Keys(ie.LenientName)
		}
	})
}

// LenientKey returns the key sequence of the lenient name.
func (ie *IndexEntry) LenientKey() []collation.Key {
	ie.computeKeys()
	return ie.lenientKey
}

// StrictKey returns the key sequence of the strict name.
func (ie *IndexEntry) StrictKey() []collation.Key {
	ie.computeKeys()
	return ie.strictKey
}

// Index is the immutable set of rows for one catalog kind.
type Index struct {
	Kind    Kind
	Entries []*Entry
	Rows    []*IndexEntry
}

// Len returns the number of rows.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Rows)
}

// BuildIndex creates one row per effective name of every entry.
func BuildIndex(kind Kind, entries []Entry, c *collation.Collator) *Index {
	idx := &Index{Kind: kind, Entries: make([]*Entry, 0, len(entries))}
	for i := range entries {
		e := entries[i]
		e.Kind = kind
		entry := &e
		idx.Entries = append(idx.Entries, entry)

		for _, name := range entry.Names() {
			lenient, strict := rowNames(entry, name)
			if strict == "" {
				continue
			}
			idx.Rows = append(idx.Rows, &IndexEntry{
				Entry:       entry,
				Name:        name,
				LenientName: lenient,
				StrictName:  strict,
				collator:    c,
			})
		}
	}
	return idx
}

// rowNames derives the lenient and strict forms of one name. Names pass
// through the same release normalizer as queries, so a title survives in a
// file name exactly as it does in the index. Movies add the release year to
// the strict form; series and anime keep a trailing qualifier such as
// "(2008)" or "(US)" in the strict form only.
func rowNames(e *Entry, name string) (lenient, strict string) {
	base := trailingQualifierRegex.ReplaceAllString(name, "")
	lenient = normalizeName(base)
	if lenient == "" {
		lenient = normalizeName(name)
		base = name
	}

	switch e.Kind {
	case KindMovie:
		if stripped := trailingYearRegex.ReplaceAllString(lenient, ""); stripped != "" {
			lenient = stripped
		}
		strict = lenient
		if e.Year > 0 {
			strict = lenient + " " + strconv.Itoa(e.Year)
		}
	default:
		strict = lenient
		if base != name {
			if q := naming.NormalizeTitle(name[len(base):]); q != "" {
				strict = lenient + " " + q
			}
		}
	}
	return strings.TrimSpace(lenient), strings.TrimSpace(strict)
}

// normalizeName runs a catalog name through the release normalizer. Names
// made only of release vocabulary, such as a film called "3D", keep their
// punctuation-normalized form instead of vanishing.
func normalizeName(name string) string {
	if n := naming.NormalizeRelease(name, false); n != "" {
		return n
	}
	return naming.NormalizeTitle(name)
}
