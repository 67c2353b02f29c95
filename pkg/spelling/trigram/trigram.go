// Package trigram implements the positional-trigram fragment index
// (spec §4.4): encoding a word into up to len+3 positional fragments,
// storing a prefix-compressed posting list of words per fragment, and
// enumerating wobbled/transposed candidate fragments for retrieval.
package trigram

import (
	"fmt"
	"sort"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/keys"
	"spelld/pkg/spelling/ortree"
	"spelld/pkg/spelling/serrors"
)

const (
	n = 3 // fragment width in code points

	placeholder = 'H' // head/tail placeholder used in spec examples
	bookendPos  = byte(1)

	// MaxWobble bounds how far retrieval shifts a fragment's position
	// byte to tolerate an insertion/deletion upstream of it, mirroring
	// the FastSS engine's own MAX_DISTANCE cap.
	MaxWobble = 2
)

// Engine is the trigram fragment index. It satisfies the toggle/
// populate/merge/cancel capability set spec §9 describes for a
// spelling engine.
type Engine struct {
	table kvtable.Table

	// pending[fragmentKey] holds words to add/remove at the next flush.
	pending map[string]*pendingFrag
}

type pendingFrag struct {
	adds    map[string]bool
	removes map[string]bool
}

func New(table kvtable.Table) *Engine {
	return &Engine{table: table, pending: make(map[string]*pendingFrag)}
}

func charAt(runes []rune, i int) rune {
	if i < 0 || i >= len(runes) {
		return placeholder
	}
	return runes[i]
}

// fragment is one positional trigram: a position byte and a 3-rune body.
type fragment struct {
	pos  byte
	body string
}

func (f fragment) key() []byte { return keys.TrigramKey(f.pos, f.body) }

// fragmentsForWord returns the deduplicated set of fragments a single
// word is indexed under, including its bookend fragment when the word
// is too short to carry enough trigrams of its own.
func fragmentsForWord(word string) []fragment {
	runes := []rune(word)
	m := len(runes)

	seen := make(map[string]bool)
	var frags []fragment
	add := func(f fragment) {
		k := string(f.pos) + f.body
		if seen[k] {
			return
		}
		seen[k] = true
		frags = append(frags, f)
	}

	for s := -1; s <= m-n+1; s++ {
		body := []rune{charAt(runes, s), charAt(runes, s+1), charAt(runes, s+2)}
		add(fragment{pos: byte(s + n), body: string(body)})
	}
	if m <= n+1 && m > 0 {
		filler := make([]rune, n-2)
		for i := range filler {
			filler[i] = placeholder
		}
		body := append(append([]rune{}, filler...), runes[0], runes[m-1])
		add(fragment{pos: bookendPos, body: string(body)})
	}
	return frags
}

// adjacentSwaps returns every word obtained from word by swapping one
// pair of adjacent code points, used to tolerate a single transposition
// for very short query words.
func adjacentSwaps(word string) []string {
	runes := []rune(word)
	var out []string
	for i := 0; i+1 < len(runes); i++ {
		swapped := append([]rune{}, runes...)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		out = append(out, string(swapped))
	}
	return out
}

// ToggleWord stages word for addition (on) or removal (!on) from every
// fragment it belongs to, to be realized at the next MergeFragmentChanges.
func (e *Engine) ToggleWord(word string, on bool) {
	for _, f := range fragmentsForWord(word) {
		k := string(f.key())
		pf, ok := e.pending[k]
		if !ok {
			pf = &pendingFrag{adds: map[string]bool{}, removes: map[string]bool{}}
			e.pending[k] = pf
		}
		if on {
			delete(pf.removes, word)
			pf.adds[word] = true
		} else {
			delete(pf.adds, word)
			pf.removes[word] = true
		}
	}
}

// Cancel discards all pending fragment changes.
func (e *Engine) Cancel() { e.pending = make(map[string]*pendingFrag) }

// Pending reports the number of fragment keys with buffered but
// uncommitted changes, for metrics.FragmentsPending.
func (e *Engine) Pending() int { return len(e.pending) }

// MergeFragmentChanges realizes every pending add/remove into the host
// table via batch. Calling it twice with no intervening ToggleWord is a
// no-op, since pending is drained on the first call.
func (e *Engine) MergeFragmentChanges(batch kvtable.Batch) error {
	keysTouched := make([]string, 0, len(e.pending))
	for k := range e.pending {
		keysTouched = append(keysTouched, k)
	}
	sort.Strings(keysTouched)

	for _, k := range keysTouched {
		pf := e.pending[k]
		words, err := e.loadWords([]byte(k))
		if err != nil {
			return err
		}
		set := make(map[string]bool, len(words))
		for _, w := range words {
			set[w] = true
		}
		for w := range pf.removes {
			delete(set, w)
		}
		for w := range pf.adds {
			set[w] = true
		}
		out := make([]string, 0, len(set))
		for w := range set {
			out = append(out, w)
		}
		sort.Strings(out)

		if len(out) == 0 {
			batch.Delete([]byte(k))
			continue
		}
		batch.Put([]byte(k), encodeWordList(out))
	}
	e.pending = make(map[string]*pendingFrag)
	return nil
}

func (e *Engine) loadWords(key []byte) ([]string, error) {
	v, ok, err := e.table.GetExact(key)
	if err != nil {
		return nil, fmt.Errorf("trigram: load %x: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	return decodeWordList(v)
}

// encodeWordList front-codes a sorted, de-duplicated word list: each
// record is {reuse:u8, rest_len:u8, rest_bytes}. Dictionary words are
// assumed to fit comfortably under the 255-byte field width; this
// mirrors the corpus's own termname-length assumptions rather than
// adding a continuation scheme for a case that does not occur here.
func encodeWordList(words []string) []byte {
	var out []byte
	prev := ""
	for _, w := range words {
		reuse := commonPrefixLen(prev, w)
		if reuse > 255 {
			reuse = 255
		}
		rest := w[reuse:]
		if len(rest) > 255 {
			rest = rest[:255]
			reuse = len(w) - 255
		}
		out = append(out, byte(reuse), byte(len(rest)))
		out = append(out, rest...)
		prev = w
	}
	return out
}

func decodeWordList(buf []byte) ([]string, error) {
	var words []string
	prev := ""
	for len(buf) > 0 {
		if len(buf) < 2 {
			return nil, fmt.Errorf("trigram: truncated record: %w", serrors.ErrCorrupt)
		}
		reuse := int(buf[0])
		restLen := int(buf[1])
		buf = buf[2:]
		if reuse > len(prev) || restLen > len(buf) {
			return nil, fmt.Errorf("trigram: malformed record: %w", serrors.ErrCorrupt)
		}
		word := prev[:reuse] + string(buf[:restLen])
		buf = buf[restLen:]
		words = append(words, word)
		prev = word
	}
	return words, nil
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// candidateFragments enumerates every fragment key a retrieval for
// word should probe: the word's own fragments, positional wobble
// within MaxWobble of each, and (for short words) fragments of every
// adjacent-transposition variant.
func candidateFragments(word string, maxEdits int) [][]byte {
	d := maxEdits
	if d > MaxWobble {
		d = MaxWobble
	}
	if d < 0 {
		d = 0
	}

	seen := make(map[string]bool)
	var out [][]byte
	addFrag := func(pos byte, body string) {
		k := keys.TrigramKey(pos, body)
		ks := string(k)
		if seen[ks] {
			return
		}
		seen[ks] = true
		out = append(out, k)
	}

	emit := func(w string) {
		for _, f := range fragmentsForWord(w) {
			if f.pos == bookendPos {
				addFrag(f.pos, f.body)
				continue
			}
			lo := int(f.pos) - d
			hi := int(f.pos) + d
			if lo < 0 {
				lo = 0
			}
			for p := lo; p <= hi && p <= 255; p++ {
				addFrag(byte(p), f.body)
			}
		}
	}

	emit(word)
	if len([]rune(word)) <= n {
		for _, sw := range adjacentSwaps(word) {
			emit(sw)
		}
	}
	return out
}

// OpenCandidates builds the OR-tree union of every existing candidate
// fragment's posting list for word, ready to merge with other engines'
// candidates (there is only ever one active engine per database, but
// ortree.Iterator composes regardless).
func (e *Engine) OpenCandidates(word string, maxEdits int) (ortree.Iterator, error) {
	var iters []ortree.Iterator
	for _, k := range candidateFragments(word, maxEdits) {
		words, err := e.loadWords(k)
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			continue
		}
		iters = append(iters, ortree.NewSliceIterator(words))
	}
	return ortree.Build(iters), nil
}
