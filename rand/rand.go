// rand/rand.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"iter"

	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

// Rand wraps a PCG32 generator and records the seed and the number of
// draws taken from it. Simulation state references its generator position
// only through State/Restore, which keeps replays and savegames exact:
// the same seed and draw count always continue with the same stream.
type Rand struct {
	r     *pcg.PCG32
	seed  int64
	draws uint64
}

func Make() *Rand {
	r := &Rand{r: pcg.NewPCG32()}
	r.Seed(0)
	return r
}

// Seed resets the generator to the start of the stream for s.
func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
	r.seed, r.draws = s, 0
}

// State identifies the current position in the random stream.
func (r *Rand) State() (seed int64, draws uint64) {
	return r.seed, r.draws
}

// Restore returns a generator at the given stream position.
func Restore(seed int64, draws uint64) *Rand {
	r := Make()
	r.Seed(seed)
	for i := uint64(0); i < draws; i++ {
		r.next()
	}
	return r
}

func (r *Rand) next() uint32 {
	r.draws++
	return r.r.Random()
}

func (r *Rand) Uint32() uint32 {
	return r.next()
}

// bounded is the usual PCG rejection scheme; each attempt is a counted
// draw.
func (r *Rand) bounded(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		if v := r.next(); v >= threshold {
			return v % bound
		}
	}
}

func (r *Rand) Intn(n int) int {
	return int(r.bounded(uint32(n)))
}

func (r *Rand) Int31n(n int32) int32 {
	return int32(r.bounded(uint32(n)))
}

func (r *Rand) Float32() float32 {
	return float32(r.next()) / (1<<32 - 1)
}

func (r *Rand) Bool() bool {
	return r.next()&1 == 1
}

// SampleSlice uniformly randomly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, slice []T) T {
	return slice[r.Intn(len(slice))]
}

// SampleFiltered uniformly randomly samples a slice, returning the index
// of the sampled item, using provided predicate function to filter the
// items that may be sampled.  An index of -1 is returned if the slice is
// empty or the predicate returns false for all items.
func SampleFiltered[T any](r *Rand, slice []T, pred func(T) bool) int {
	idx := -1
	candidates := 0
	for i, v := range slice {
		if pred(v) {
			candidates++
			p := float32(1) / float32(candidates)
			if r.Float32() < p {
				idx = i
			}
		}
	}
	return idx
}

// SampleWeighted randomly samples an element of the slice with the
// probability of choosing each element proportional to the value returned
// by the provided callback. It reports failure if the weights sum to
// zero.
func SampleWeighted[T any](r *Rand, slice []T, weight func(T) int) (T, bool) {
	// Weighted reservoir sampling...
	var sampled T
	idx := -1
	sumWt := 0
	for i, v := range slice {
		w := weight(v)
		if w == 0 {
			continue
		}

		sumWt += w
		p := float32(w) / float32(sumWt)
		if r.Float32() < p {
			sampled, idx = v, i
		}
	}
	return sampled, idx != -1
}

// ShuffleSlice randomly permutes the elements of s in place.
func ShuffleSlice[Slice ~[]E, E any](s Slice, r *Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// PermutationElement returns the ith element of a random permutation of the
// set of integers [0...,n-1].
// i/n, p is hash, via Andrew Kensler
func PermutationElement(i int, n int, p uint32) int {
	ui, l := uint32(i), uint32(n)
	w := l - 1
	w |= w >> 1
	w |= w >> 2
	w |= w >> 4
	w |= w >> 8
	w |= w >> 16
	for {
		ui ^= p
		ui *= 0xe170893d
		ui ^= p >> 16
		ui ^= (ui & w) >> 4
		ui ^= p >> 8
		ui *= 0x0929eb3f
		ui ^= p >> 23
		ui ^= (ui & w) >> 1
		ui *= 1 | p>>27
		ui *= 0x6935fa69
		ui ^= (ui & w) >> 11
		ui *= 0x74dcb303
		ui ^= (ui & w) >> 2
		ui *= 0x9e501cc3
		ui ^= (ui & w) >> 2
		ui *= 0xc860a3df
		ui &= w
		ui ^= ui >> 5
		if ui < l {
			break
		}
	}
	return int((ui + p) % l)
}

// PermuteSlice visits the elements of s in a permuted order derived from
// seed, without copying the slice.
func PermuteSlice[Slice ~[]E, E any](s Slice, seed uint32) iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i := range len(s) {
			ip := PermutationElement(i, len(s), seed)
			if !yield(ip, s[ip]) {
				break
			}
		}
	}
}
