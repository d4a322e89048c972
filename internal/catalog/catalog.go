package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
)

// Catalog is an immutable word lookup table. Create it once at startup and
// pass it by reference to whatever needs word metadata. All methods are safe
// for concurrent use.
type Catalog struct {
	version string
	words   []Word
	byID    map[int]int // word id -> first index with that id
}

// New builds a Catalog from a decoded payload. The payload's words are
// copied; later changes to p do not affect the catalog.
func New(p *Payload) *Catalog {
	c := &Catalog{byID: make(map[int]int)}
	if p == nil {
		return c
	}
	c.version = p.Version
	c.words = append([]Word(nil), p.Words...)
	for i, w := range c.words {
		if _, ok := c.byID[w.ID]; !ok {
			c.byID[w.ID] = i
		}
	}
	return c
}

// Parse validates and decodes a words document.
func Parse(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(&p), nil
}

// Load reads the words document at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return c, nil
}

// Version returns the data version stamp of the catalog.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of words.
func (c *Catalog) Len() int { return len(c.words) }

// Words returns a copy of all words in catalog order.
func (c *Catalog) Words() []Word {
	return append([]Word(nil), c.words...)
}

// Lookup finds a word by id. Ids are 1-based positions in the export; when
// the position is out of range the word is searched for by its id field.
func (c *Catalog) Lookup(id int) (Word, bool) {
	if id >= 1 && id <= len(c.words) {
		return c.words[id-1], true
	}
	if i, ok := c.byID[id]; ok {
		return c.words[i], true
	}
	return Word{}, false
}

// WordMetadata returns the metadata for a word id. Unknown ids yield empty
// metadata; the error is always nil for an in-memory catalog.
func (c *Catalog) WordMetadata(id int) (Metadata, error) {
	w, ok := c.Lookup(id)
	if !ok {
		return Metadata{}, nil
	}
	return w.Metadata(), nil
}

// Select picks up to count random words at the target level. With band > 0
// any level within band of target qualifies. If fewer than count words
// qualify, every word with a level is eligible instead. A nil rng uses the
// global source.
func (c *Catalog) Select(target, count, band int, rng *rand.Rand) []Word {
	if count <= 0 {
		return nil
	}
	inBand := func(w Word) bool {
		if w.Level == nil {
			return false
		}
		if band <= 0 {
			return *w.Level == target
		}
		d := *w.Level - target
		if d < 0 {
			d = -d
		}
		return d <= band
	}

	pool := c.filter(inBand)
	if len(pool) < count {
		pool = c.filter(func(w Word) bool { return w.Level != nil })
	}

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}

func (c *Catalog) filter(keep func(Word) bool) []Word {
	var out []Word
	for _, w := range c.words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}
