package bindings

// Context names the chunk that reads and writes go to. It is a plain
// index into the Encoder's or Decoder's chunk table and is cheap to copy.
type Context struct {
	index int
	union bool
}

// Index returns the chunk index.
func (c Context) Index() int { return c.index }

// IsUnion reports whether the value is being written directly inside a
// union payload. Unions in that position are boxed behind a pointer.
func (c Context) IsUnion() bool { return c.union }

// WithinUnion returns the context used for a union's payload.
func (c Context) WithinUnion() Context {
	c.union = true
	return c
}
