package community

import (
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/communities/precinct"
)

// PopulationOf sums the populations of ps.
func PopulationOf(ps []*precinct.Precinct) int {
	total := 0
	for _, p := range ps {
		total += p.Population()
	}

	return total
}

// PartisanshipOf returns R/(R+D) over the summed votes of ps, 0 with no votes.
func PartisanshipOf(ps []*precinct.Precinct) float64 {
	var v precinct.Votes
	for _, p := range ps {
		pv := p.Votes()
		v.Democratic += pv.Democratic
		v.Republican += pv.Republican
	}

	return v.Share()
}

// StandardDeviationOf returns the population standard deviation of the
// per-precinct shares of ps, skipping precincts without votes.
func StandardDeviationOf(ps []*precinct.Precinct) float64 {
	shares := make([]float64, 0, len(ps))
	for _, p := range ps {
		if p.HasVotes() {
			shares = append(shares, p.Partisanship())
		}
	}
	if len(shares) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(shares, nil)

	return std
}

// AverageCompactness returns the mean Schwartzberg score of cs, 0 when empty.
func AverageCompactness(cs []*Community) float64 {
	if len(cs) == 0 {
		return 0
	}
	scores := make([]float64, len(cs))
	for i, c := range cs {
		scores[i] = c.Compactness()
	}

	return stat.Mean(scores, nil)
}
