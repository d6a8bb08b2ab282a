// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

// Package interest encodes named interests into fixed-width bit vectors and
// scores the overlap between two vectors.
package interest

import (
	"math/bits"
	"slices"

	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// MaxInterests is the number of bit positions a Vector may use.
const MaxInterests = 26

// DefaultNames is the stock catalog. Bit i corresponds to DefaultNames[i].
var DefaultNames = []string{
	"Running", "Cycling", "Yoga", "Walking", "Working out", "Trekking", "Aerobics",
	"Swimming", "Pets", "Foodie", "Vegan", "News", "Social Service", "Entrepreneurship",
	"Home Decor", "Investments", "Fashion", "Writing", "Cooking", "Singing", "Photography",
	"Instruments", "Painting", "DIY", "Dancing", "Acting",
}

// Vector is a bit set of catalog interests.
type Vector uint64

// Count returns the number of interests set in v.
func (v Vector) Count() int {
	return bits.OnesCount64(uint64(v))
}

// Has reports whether bit i is set.
func (v Vector) Has(i int) bool {
	return i >= 0 && i < 64 && v&(1<<uint(i)) != 0
}

// Catalog is an immutable, ordered mapping between interest names and bit
// positions. The zero value is not usable; construct with NewCatalog.
type Catalog struct {
	names []string
	index map[string]int
	mask  Vector
}

// NewCatalog builds a catalog whose bit positions follow the order of names.
func NewCatalog(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return nil, kerr.New(kerr.CodeInterestCatalogInvalid, "interest catalog must not be empty")
	}
	if len(names) > MaxInterests {
		return nil, kerr.Errorf(kerr.CodeInterestCatalogInvalid,
			"interest catalog has %d names, at most %d are supported", len(names), MaxInterests)
	}

	c := &Catalog{
		names: slices.Clone(names),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if name == "" {
			return nil, kerr.Errorf(kerr.CodeInterestCatalogInvalid, "interest catalog entry %d is empty", i)
		}
		if _, dup := c.index[name]; dup {
			return nil, kerr.Errorf(kerr.CodeInterestCatalogInvalid, "interest %q appears more than once", name)
		}
		c.index[name] = i
		c.mask |= 1 << uint(i)
	}
	return c, nil
}

// MustCatalog is NewCatalog for static name lists; it panics on error.
func MustCatalog(names []string) *Catalog {
	c, err := NewCatalog(names)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns a catalog built from DefaultNames.
func Default() *Catalog {
	return MustCatalog(DefaultNames)
}

// Len returns the number of interests in the catalog.
func (c *Catalog) Len() int { return len(c.names) }

// Names returns the catalog names in bit order.
func (c *Catalog) Names() []string { return slices.Clone(c.names) }

// Mask returns a vector with every catalog bit set.
func (c *Catalog) Mask() Vector { return c.mask }

// Contains reports whether name is a catalog interest.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Encode sets the bit of every known name. Unknown names are ignored.
func (c *Catalog) Encode(names []string) Vector {
	var v Vector
	for _, name := range names {
		if i, ok := c.index[name]; ok {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Decode returns the names whose bits are set in v, in catalog order.
// Bits outside the catalog are ignored. The result is never nil.
func (c *Catalog) Decode(v Vector) []string {
	out := make([]string, 0, (v & c.mask).Count())
	for i, name := range c.names {
		if v.Has(i) {
			out = append(out, name)
		}
	}
	return out
}

// Unknown returns the names that are not in the catalog, in input order.
func (c *Catalog) Unknown(names []string) []string {
	var out []string
	for _, name := range names {
		if !c.Contains(name) {
			out = append(out, name)
		}
	}
	return out
}
