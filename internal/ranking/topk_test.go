// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package ranking_test

import (
	"iter"
	"math/rand/v2"
	"slices"
	"sort"
	"testing"

	"github.com/kindred-dev/kindred/internal/interest"
	"github.com/kindred-dev/kindred/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqOf(cands ...ranking.Candidate[string]) iter.Seq[ranking.Candidate[string]] {
	return slices.Values(cands)
}

func ids(scored []ranking.Scored[string]) []int64 {
	out := make([]int64, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out
}

func TestTopK_SelectsHighestScores(t *testing.T) {
	query := interest.Vector(0b0111)
	got := ranking.TopK(query, 2, seqOf(
		ranking.Candidate[string]{ID: 1, Vector: 0b0111, Payload: "three"},
		ranking.Candidate[string]{ID: 2, Vector: 0b1000, Payload: "zero"},
		ranking.Candidate[string]{ID: 3, Vector: 0b0011, Payload: "two"},
		ranking.Candidate[string]{ID: 4, Vector: 0b0001, Payload: "one"},
	))

	require.Len(t, got, 2)
	assert.Equal(t, []int64{1, 3}, ids(got))
	assert.Equal(t, 3, got[0].Score)
	assert.Equal(t, "two", got[1].Payload)
}

func TestTopK_FewerThanK(t *testing.T) {
	got := ranking.TopK(interest.Vector(0b11), 10, seqOf(
		ranking.Candidate[string]{ID: 5, Vector: 0b01},
		ranking.Candidate[string]{ID: 6, Vector: 0b11},
	))
	assert.Equal(t, []int64{6, 5}, ids(got))
}

func TestTopK_Empty(t *testing.T) {
	got := ranking.TopK(interest.Vector(0b11), 3, seqOf())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTopK_NonPositiveK(t *testing.T) {
	cands := seqOf(ranking.Candidate[string]{ID: 1, Vector: 1})
	assert.Empty(t, ranking.TopK(1, 0, cands))
	assert.Empty(t, ranking.TopK(1, -4, cands))
}

func TestTopK_TiesBreakByAscendingID(t *testing.T) {
	got := ranking.TopK(interest.Vector(0b1), 3, seqOf(
		ranking.Candidate[string]{ID: 9, Vector: 0b1},
		ranking.Candidate[string]{ID: 2, Vector: 0b1},
		ranking.Candidate[string]{ID: 7, Vector: 0b1},
		ranking.Candidate[string]{ID: 4, Vector: 0b1},
		ranking.Candidate[string]{ID: 1, Vector: 0b0},
	))
	assert.Equal(t, []int64{2, 4, 7}, ids(got))
}

func TestTopK_MatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	mask := interest.Default().Mask()

	for round := range 50 {
		query := interest.Vector(rng.Uint64()) & mask
		n := rng.IntN(300)
		cands := make([]ranking.Candidate[string], n)
		for i := range cands {
			cands[i] = ranking.Candidate[string]{ID: int64(rng.IntN(1000)), Vector: interest.Vector(rng.Uint64()) & mask}
		}
		k := 1 + rng.IntN(20)

		got := ranking.TopK(query, k, slices.Values(cands))

		want := slices.Clone(cands)
		sort.SliceStable(want, func(i, j int) bool {
			si, sj := interest.Score(query, want[i].Vector), interest.Score(query, want[j].Vector)
			if si != sj {
				return si > sj
			}
			return want[i].ID < want[j].ID
		})
		want = want[:min(k, n)]

		require.Len(t, got, len(want), "round %d", round)
		for i := range want {
			assert.Equal(t, interest.Score(query, want[i].Vector), got[i].Score, "round %d pos %d", round, i)
			assert.Equal(t, want[i].ID, got[i].ID, "round %d pos %d", round, i)
		}
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
		}
	}
}

func TestTopK_ConsumesWholeSequence(t *testing.T) {
	var seen int
	seq := func(yield func(ranking.Candidate[string]) bool) {
		for i := range 100 {
			seen++
			if !yield(ranking.Candidate[string]{ID: int64(i), Vector: interest.Vector(i)}) {
				return
			}
		}
	}
	got := ranking.TopK(interest.Vector(1<<7-1), 3, seq)
	assert.Equal(t, 100, seen)
	assert.Len(t, got, 3)
	assert.Equal(t, 6, got[0].Score)
	assert.Equal(t, int64(63), got[0].ID)
}
