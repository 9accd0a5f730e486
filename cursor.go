package brine

// cursor is a bounds-checked read position over an immutable byte slice.
// Every read either succeeds and advances the position or fails without
// moving it. Slices returned by readExact alias the source buffer; they
// are views, never copies.
type cursor struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int
}

func newCursor(data []byte, maxDepth int) *cursor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &cursor{data: data, maxDepth: maxDepth}
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

// readExact returns the next n bytes as a view into the source buffer.
func (c *cursor) readExact(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, errAt(c.pos, ErrTruncated, "need %d bytes, have %d", n, c.remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, errAt(c.pos, ErrTruncated, "need 1 byte, have 0")
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// peekTag returns the next byte without advancing.
func (c *cursor) peekTag() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, errAt(c.pos, ErrTruncated, "need 1 byte, have 0")
	}
	return c.data[c.pos], nil
}

// mark and rewind implement the checkpoint used when a compound decode
// must abort and report its own starting offset.
func (c *cursor) mark() int      { return c.pos }
func (c *cursor) rewind(pos int) { c.pos = pos }

// enter tracks nesting into a compound value. Callers pair it with leave.
func (c *cursor) enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return errAt(c.pos, ErrDepthExceeded, "nesting deeper than %d", c.maxDepth)
	}
	return nil
}

func (c *cursor) leave() { c.depth-- }
