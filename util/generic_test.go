// util/generic_test.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"testing"
)

func TestOptional(t *testing.T) {
	var o Optional[int]
	if o.IsSet {
		t.Errorf("zero Optional is set")
	}
	if v := o.GetOr(42); v != 42 {
		t.Errorf("GetOr on unset = %d, expected 42", v)
	}

	o.Set(7)
	if !o.IsSet || o.Get() != 7 {
		t.Errorf("after Set(7): IsSet %v, Get %d", o.IsSet, o.Get())
	}
	if v := o.GetOr(42); v != 7 {
		t.Errorf("GetOr on set = %d, expected 7", v)
	}

	o.Clear()
	if o.IsSet || o.Value != 0 {
		t.Errorf("after Clear: IsSet %v, Value %d", o.IsSet, o.Value)
	}

	if m := MakeOptional("x"); !m.IsSet || m.Get() != "x" {
		t.Errorf("MakeOptional gave %+v", m)
	}
}

func TestSelect(t *testing.T) {
	if Select(true, 1, 2) != 1 || Select(false, 1, 2) != 2 {
		t.Errorf("Select gave wrong results")
	}
}

func TestFilterSlice(t *testing.T) {
	even := func(v int) bool { return v&1 == 0 }

	s := []int{1, 2, 3, 4, 5, 6}
	f := FilterSlice(s, even)
	if len(f) != 3 || f[0] != 2 || f[1] != 4 || f[2] != 6 {
		t.Errorf("FilterSlice = %v", f)
	}
	if len(s) != 6 {
		t.Errorf("FilterSlice modified its input: %v", s)
	}

	ip := FilterSliceInPlace([]int{1, 2, 3, 4, 5, 6}, even)
	if len(ip) != 3 || ip[0] != 2 || ip[1] != 4 || ip[2] != 6 {
		t.Errorf("FilterSliceInPlace = %v", ip)
	}
}

func TestMapSlice(t *testing.T) {
	m := MapSlice([]int{1, 2, 3}, func(v int) int { return 10 * v })
	if len(m) != 3 || m[0] != 10 || m[1] != 20 || m[2] != 30 {
		t.Errorf("MapSlice = %v", m)
	}
}

func TestSortedMapKeys(t *testing.T) {
	m := map[string]int{"echo": 1, "alpha": 2, "charlie": 3}
	keys := SortedMapKeys(m)
	if len(keys) != 3 || keys[0] != "alpha" || keys[1] != "charlie" || keys[2] != "echo" {
		t.Errorf("SortedMapKeys = %v", keys)
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer[int](4)
	if rb.Size() != 0 {
		t.Errorf("empty ring buffer size %d", rb.Size())
	}

	rb.Add(1, 2, 3)
	if rb.Size() != 3 {
		t.Errorf("size %d, expected 3", rb.Size())
	}
	for i := 0; i < 3; i++ {
		if rb.Get(i) != i+1 {
			t.Errorf("Get(%d) = %d, expected %d", i, rb.Get(i), i+1)
		}
	}

	// Overflow discards the oldest entries.
	rb.Add(4, 5, 6)
	if rb.Size() != 4 {
		t.Errorf("size %d after overflow, expected 4", rb.Size())
	}
	for i := 0; i < 4; i++ {
		if rb.Get(i) != i+3 {
			t.Errorf("Get(%d) = %d, expected %d", i, rb.Get(i), i+3)
		}
	}
}
