// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

// Package ranking selects the highest-scoring candidates for a query vector.
package ranking

import (
	"container/heap"
	"iter"
	"slices"

	"github.com/kindred-dev/kindred/internal/interest"
)

// Candidate is one entry of a candidate scan.
type Candidate[T any] struct {
	ID      int64
	Vector  interest.Vector
	Payload T
}

// Scored is a selected candidate together with its overlap score.
type Scored[T any] struct {
	ID      int64
	Score   int
	Payload T
}

// TopK returns at most k candidates ordered by descending score. Equal scores
// are ordered by ascending ID. Only k entries are held at any time.
func TopK[T any](query interest.Vector, k int, candidates iter.Seq[Candidate[T]]) []Scored[T] {
	if k <= 0 {
		return []Scored[T]{}
	}

	h := &boundedHeap[T]{items: make([]Scored[T], 0, min(k, 64))}
	for c := range candidates {
		s := Scored[T]{ID: c.ID, Score: interest.Score(query, c.Vector), Payload: c.Payload}
		if h.Len() < k {
			heap.Push(h, s)
			continue
		}
		if worse(h.items[0], s) {
			h.items[0] = s
			heap.Fix(h, 0)
		}
	}

	out := h.items
	slices.SortFunc(out, func(a, b Scored[T]) int {
		switch {
		case worse(b, a):
			return -1
		case worse(a, b):
			return 1
		default:
			return 0
		}
	})
	return out
}

// worse reports whether a ranks below b.
func worse[T any](a, b Scored[T]) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ID > b.ID
}

// boundedHeap is a min-heap whose root is the weakest retained candidate.
type boundedHeap[T any] struct {
	items []Scored[T]
}

var _ heap.Interface = (*boundedHeap[struct{}])(nil)

func (h *boundedHeap[T]) Len() int           { return len(h.items) }
func (h *boundedHeap[T]) Less(i, j int) bool { return worse(h.items[i], h.items[j]) }
func (h *boundedHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *boundedHeap[T]) Push(x any) {
	h.items = append(h.items, x.(Scored[T]))
}

func (h *boundedHeap[T]) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	var zero Scored[T]
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	return item
}
