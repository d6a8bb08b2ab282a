// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package interest_test

import (
	"math/rand/v2"
	"testing"

	"github.com/kindred-dev/kindred/internal/interest"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	c := interest.Default()

	tests := []struct {
		name string
		a, b []string
		want int
	}{
		{"disjoint", []string{"Running"}, []string{"Yoga"}, 0},
		{"one shared", []string{"Running", "Yoga"}, []string{"Running", "Cycling"}, 1},
		{"identical", []string{"Pets", "Vegan", "DIY"}, []string{"DIY", "Pets", "Vegan"}, 3},
		{"empty", nil, []string{"Yoga"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interest.Score(c.Encode(tt.a), c.Encode(tt.b)))
		})
	}
}

func TestScore_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	mask := interest.Default().Mask()

	for range 500 {
		a := interest.Vector(rng.Uint64()) & mask
		b := interest.Vector(rng.Uint64()) & mask

		assert.Equal(t, interest.Score(a, b), interest.Score(b, a))
		assert.Zero(t, interest.Score(a, 0))
		assert.Equal(t, a.Count(), interest.Score(a, a))
		assert.LessOrEqual(t, interest.Score(a, b), interest.MaxInterests)
	}
}
