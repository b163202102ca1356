package model

// HeaderField is one field of a header instance, with its bit-level position
// inside the header.
type HeaderField struct {
	Name   string `json:"name"`   // fully-qualified, "<header>.<field>"
	Header string `json:"header"` // owning header instance
	Offset int    `json:"offset"` // bit offset from the start of the header
	Width  int    `json:"width"`  // bit width
}

// Header is a header instance with its ordered field layout. Offsets are
// cumulative over the declared field order.
type Header struct {
	Name   string        `json:"name"` // instance name, e.g. "ipv4"
	Type   string        `json:"type"` // header type name, e.g. "ipv4_t"
	Fields []HeaderField `json:"fields"`
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	out := *h
	out.Fields = append([]HeaderField(nil), h.Fields...)
	return &out
}

// Bits returns the total bit width of the header.
func (h *Header) Bits() int {
	n := 0
	for _, f := range h.Fields {
		n += f.Width
	}
	return n
}
