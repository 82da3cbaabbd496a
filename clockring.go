// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist
// Copyright 2026 rocecc contributors

package rocecc

// clockRing is a ring buffer of Clock values, used to window timestamp
// samples over a bounded history (Swift's per-window decrease gates).
type clockRing struct {
	ring  []Clock
	start int
	end   int
}

// newClockRing returns a new clockRing with the given capacity.
func newClockRing(size int) *clockRing {
	return &clockRing{
		make([]Clock, size+1),
		0,
		0,
	}
}

// add removes any values at or before earliest, then adds the given value.
// False is returned if the ring is full.
func (r *clockRing) add(value, earliest Clock) bool {
	for r.start != r.end {
		if r.ring[r.start] > earliest {
			break
		}
		r.start = r.next(r.start)
	}
	var e int
	if e = r.next(r.end); e == r.start {
		return false
	}
	r.ring[r.end] = value
	r.end = e
	return true
}

// next returns the ring index after the given index.
func (r *clockRing) next(index int) int {
	if index >= len(r.ring)-1 {
		return 0
	}
	return index + 1
}

// prior returns the ring index before the given index.
func (r *clockRing) prior(index int) int {
	if index > 0 {
		return index - 1
	}
	return len(r.ring) - 1
}

// length returns the number of elements in the ring.
func (r *clockRing) length() int {
	if r.end >= r.start {
		return r.end - r.start
	}
	return len(r.ring) - (r.start - r.end)
}
