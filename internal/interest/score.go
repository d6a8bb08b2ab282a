// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package interest

import "math/bits"

// Score returns the number of interests held by both a and b.
func Score(a, b Vector) int {
	return bits.OnesCount64(uint64(a & b))
}
