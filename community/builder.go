package community

import (
	"fmt"
	"sort"
)

// Builder is the construction plan of one community: how many precincts it
// claims on each island, and which link precincts it must start from.
// A Builder spanning several islands is held together by corridor links.
type Builder struct {
	ID int

	// Allotment maps island index → precinct quota on that island.
	Allotment map[int]int

	// Seeds maps island index → precincts that must be annexed first.
	Seeds map[int][]string
}

// NewBuilder returns an empty plan for community id.
func NewBuilder(id int) *Builder {
	return &Builder{
		ID:        id,
		Allotment: make(map[int]int),
		Seeds:     make(map[int][]string),
	}
}

// Allot sets the quota on island. A non-positive n removes the island.
func (b *Builder) Allot(island, n int) {
	if n <= 0 {
		delete(b.Allotment, island)
		return
	}
	b.Allotment[island] = n
}

// Seed records a precinct the community must start from on island.
func (b *Builder) Seed(island int, id string) {
	for _, s := range b.Seeds[island] {
		if s == id {
			return
		}
	}
	b.Seeds[island] = append(b.Seeds[island], id)
}

// Total returns the summed quota.
func (b *Builder) Total() int {
	n := 0
	for _, k := range b.Allotment {
		n += k
	}

	return n
}

// Islands returns the allotted island indexes ascending.
func (b *Builder) Islands() []int {
	out := make([]int, 0, len(b.Allotment))
	for i := range b.Allotment {
		out = append(out, i)
	}
	sort.Ints(out)

	return out
}

// MultiIsland reports whether the community spans more than one island.
func (b *Builder) MultiIsland() bool { return len(b.Allotment) > 1 }

// String implements fmt.Stringer.
func (b *Builder) String() string {
	return fmt.Sprintf("Builder(%d total=%d islands=%v)", b.ID, b.Total(), b.Islands())
}
