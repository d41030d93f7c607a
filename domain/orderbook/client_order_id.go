package orderbook

// ClientOrderIDMaxLength is the capacity of a ClientOrderID in bytes.
const ClientOrderIDMaxLength = 64

// emptyClientOrderID is rendered for an id that was never set.
const emptyClientOrderID = "NULL"

// ClientOrderID is a reusable fixed-capacity token. Setting it copies
// into the inline buffer, so pooled orders never allocate for it.
// Values longer than ClientOrderIDMaxLength are truncated.
type ClientOrderID struct {
	buf [ClientOrderIDMaxLength]byte
	n   uint8
	set bool
}

func (c *ClientOrderID) Set(s string) {
	c.n = uint8(copy(c.buf[:], s))
	c.set = true
}

func (c *ClientOrderID) SetBytes(b []byte) {
	c.n = uint8(copy(c.buf[:], b))
	c.set = true
}

// Bytes aliases the internal buffer; it is only valid until the next Set.
func (c *ClientOrderID) Bytes() []byte {
	return c.buf[:c.n]
}

func (c *ClientOrderID) Len() int { return int(c.n) }

// IsSet distinguishes an explicitly empty id from one never assigned.
func (c *ClientOrderID) IsSet() bool { return c.set }

func (c *ClientOrderID) Reset() {
	c.n = 0
	c.set = false
}

func (c *ClientOrderID) String() string {
	if !c.set {
		return emptyClientOrderID
	}
	return string(c.buf[:c.n])
}

func (c *ClientOrderID) appendTo(dst []byte) []byte {
	if !c.set {
		return append(dst, emptyClientOrderID...)
	}
	return append(dst, c.buf[:c.n]...)
}
