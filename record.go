package sacamantecas

import (
	"encoding/json"
	"strings"
)

// Metadata accumulation constants. The placeholder and separators are part
// of the output format and must not change between releases.
const (
	// emptyKeyPlaceholder labels values committed without a key.
	emptyKeyPlaceholder = "[vacío]"

	// valueSeparator joins the text fragments of a single value.
	valueSeparator = " / "

	// keyTerminator is stripped from the end of committed keys.
	keyTerminator = ":"
)

// Record is bibliographic metadata as an insertion-ordered set of
// key/value pairs. Setting an existing key overwrites its value without
// moving the pair.
type Record struct {
	keys   []string
	values map[string]string
}

// Pair is a single metadata entry.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set stores value under key. An existing key keeps its position.
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of pairs in the record.
func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Pairs returns the entries in insertion order.
func (r *Record) Pairs() []Pair {
	pairs := make([]Pair, 0, len(r.keys))
	for _, k := range r.keys {
		pairs = append(pairs, Pair{Key: k, Value: r.values[k]})
	}
	return pairs
}

// MarshalJSON encodes the record as an ordered array of pairs.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Pairs())
}

// UnmarshalJSON decodes a record from its ordered array form.
func (r *Record) UnmarshalJSON(data []byte) error {
	var pairs []Pair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	r.keys = nil
	r.values = make(map[string]string, len(pairs))
	for _, p := range pairs {
		r.Set(p.Key, p.Value)
	}
	return nil
}

// RecordBuilder accumulates key and value text fragments and commits them
// into a Record. Both extraction strategies share its rules: fragments are
// whitespace-collapsed, key fragments concatenate directly, value
// fragments join with " / ", and pairs commit when a value element closes.
type RecordBuilder struct {
	rec    *Record
	key    string
	values []string
}

// NewRecordBuilder returns a builder accumulating into a fresh record.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{rec: NewRecord()}
}

// AppendKey adds a text fragment to the pending key.
// Fragments that collapse to the empty string are ignored.
func (b *RecordBuilder) AppendKey(fragment string) {
	fragment = collapseSpace(fragment)
	if fragment == "" {
		return
	}
	b.key += fragment
}

// AppendValue adds a text fragment to the pending value.
// Fragments that collapse to the empty string are ignored.
func (b *RecordBuilder) AppendValue(fragment string) {
	fragment = collapseSpace(fragment)
	if fragment == "" {
		return
	}
	b.values = append(b.values, fragment)
}

// HasKey reports whether any key text is pending.
func (b *RecordBuilder) HasKey() bool {
	return b.key != ""
}

// ResetKey discards the pending key.
func (b *RecordBuilder) ResetKey() {
	b.key = ""
}

// ResetValue discards the pending value.
func (b *RecordBuilder) ResetValue() {
	b.values = b.values[:0]
}

// Commit stores the pending pair and resets both buffers.
// A pair with an empty value is dropped. An empty key commits under the
// [vacío] placeholder; trailing colons are stripped from non-empty keys.
// Committing an already present key overwrites its value.
func (b *RecordBuilder) Commit() {
	key := strings.TrimSpace(strings.TrimRight(b.key, keyTerminator))
	value := strings.Join(b.values, valueSeparator)
	b.key = ""
	b.values = b.values[:0]
	if value == "" {
		return
	}
	if key == "" {
		key = emptyKeyPlaceholder
	}
	b.rec.Set(key, value)
}

// Record returns the record accumulated so far.
func (b *RecordBuilder) Record() *Record {
	return b.rec
}

// collapseSpace reduces every whitespace run in s to a single space and
// trims the ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
