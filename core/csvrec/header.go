/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package csvrec

import "fmt"

// Header maps column names to positions. With duplicate names the last
// occurrence wins.
type Header struct {
	pos   map[string]int
	names []string
}

func newHeader(names []string) *Header {
	h := &Header{names: names, pos: make(map[string]int, len(names))}
	for i, name := range names {
		h.pos[name] = i
	}
	return h
}

func (h *Header) Len() int        { return len(h.names) }
func (h *Header) Names() []string { return h.names }

func (h *Header) Index(name string) (int, error) {
	i, ok := h.pos[name]
	if !ok {
		return -1, fmt.Errorf("%w: column %q not in header %v", ErrFieldNotFound, name, h.names)
	}
	return i, nil
}
