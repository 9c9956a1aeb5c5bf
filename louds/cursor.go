package louds

// Cursor walks a key that usually grows by one character at a time. It keeps
// the node indices resolved for every prefix of the previous key and only
// re-walks from the first position where the new key diverges.
type Cursor struct {
	index *Index
	key   []byte
	nodes []int // nodes[i] is the node reached by key[:i+1]
}

// NewCursor creates a Cursor positioned at the root.
func (x *Index) NewCursor() *Cursor {
	return &Cursor{index: x}
}

// Sync moves the cursor to key and returns the node indices of every resolved
// prefix: result[i] is the node for key[:i+1]. The result is shorter than key
// when key[:len(result)+1] is not in the trie. The returned slice is owned by
// the Cursor and valid until the next call.
func (c *Cursor) Sync(key []byte) []int {
	cp := 0
	for cp < len(c.nodes) && cp < len(key) && c.key[cp] == key[cp] {
		cp++
	}
	// Everything resolved at positions >= cp belongs to the old key.
	c.nodes = c.nodes[:cp]
	c.key = append(c.key[:0], key...)

	node := Root
	if cp > 0 {
		node = c.nodes[cp-1]
	}
	for i := cp; i < len(key); i++ {
		next, ok := c.index.SearchCharNodeIndex(node, key[i])
		if !ok {
			break
		}
		c.nodes = append(c.nodes, next)
		node = next
	}
	return c.nodes
}

// Node returns the node for the full key of the last Sync.
func (c *Cursor) Node() (int, bool) {
	if len(c.nodes) != len(c.key) {
		return -1, false
	}
	if len(c.nodes) == 0 {
		return Root, true
	}
	return c.nodes[len(c.nodes)-1], true
}

// Reset discards all retained state.
func (c *Cursor) Reset() {
	c.key = c.key[:0]
	c.nodes = c.nodes[:0]
}
