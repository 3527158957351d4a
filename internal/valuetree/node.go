// Package valuetree implements the self-describing tagged-value tree
// format used for archive indexes and many payload files: null, dict,
// array, string, int, float, and the three 2D-vector string variants.
package valuetree

// Kind tags a Node's variant.
type Kind int

const (
	KindNull Kind = iota
	KindDict
	KindArray
	KindString
	KindInt
	KindFloat
	KindVec2
	KindVec2Pair
	KindVec2Triplet
)

// Node is a tagged union over the value grammar. Int, Float, and the
// vector kinds keep their literal wire text in Text so re-encoding is
// byte-exact even though Go's own int/float formatting might otherwise
// diverge from what the game shipped (e.g. "3" vs "3.0").
type Node struct {
	Kind  Kind
	Text  string // String/Int/Float/Vec* literal text
	Dict  *Dict
	Array []*Node
}

// DictEntry is one key/value pair of an ordered Dict.
type DictEntry struct {
	Key   string
	Value *Node

	// keyNode holds an unresolved key during parsing, before string refs
	// are fixed up against the offsets table; nil once Key is final.
	keyNode *Node
}

// Dict is an insertion-ordered string-keyed map. Duplicate keys seen while
// parsing are resolved last-write-wins, keeping the first occurrence's
// position — matching the reference parser's behavior of overwriting
// in place rather than erroring.
type Dict struct {
	Entries []DictEntry
	index   map[string]int
}

// NewDict returns an empty ordered dict ready for Set.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Set inserts or overwrites key, preserving the position of the first
// insertion on overwrite.
func (d *Dict) Set(key string, value *Node) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.Entries[i].Value = value
		return
	}
	d.index[key] = len(d.Entries)
	d.Entries = append(d.Entries, DictEntry{Key: key, Value: value})
}

// Get looks up key, reporting whether it was present.
func (d *Dict) Get(key string) (*Node, bool) {
	if d == nil || d.index == nil {
		return nil, false
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.Entries[i].Value, true
}

// Null, String, Int, Float, and Arr are small constructors for building a
// tree programmatically (used by pack's index writer and by tests).
func Null() *Node                  { return &Node{Kind: KindNull} }
func String(s string) *Node        { return &Node{Kind: KindString, Text: s} }
func Int(text string) *Node        { return &Node{Kind: KindInt, Text: text} }
func Float(text string) *Node      { return &Node{Kind: KindFloat, Text: text} }
func DictNode(d *Dict) *Node        { return &Node{Kind: KindDict, Dict: d} }
func Arr(items []*Node) *Node       { return &Node{Kind: KindArray, Array: items} }
