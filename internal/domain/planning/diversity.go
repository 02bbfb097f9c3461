package planning

import "sort"

// diversityWeight balances inventory fit against variety in the re-ranking
// pass; the remainder keeps the base score.
const diversityWeight = 0.3

// RankWithDiversity re-orders score-sorted candidates so consecutive picks
// avoid reusing the same ingredients. It greedily selects the candidate
// maximizing base*0.7 + diversity*0.3, where diversity falls with the
// overlap between the candidate's tokens and those already used, and
// accumulates the winner's tokens before the next pick.
func RankWithDiversity(candidates []*Candidate) []*Candidate {
	if len(candidates) <= 1 {
		return candidates
	}

	pool := make([]*Candidate, len(candidates))
	copy(pool, candidates)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	used := make(map[string]struct{})
	ranked := make([]*Candidate, 0, len(pool))

	for len(pool) > 0 {
		bestIdx := 0
		bestCombined := combinedScore(pool[0], used)
		for i := 1; i < len(pool); i++ {
			if c := combinedScore(pool[i], used); c > bestCombined {
				bestCombined = c
				bestIdx = i
			}
		}

		pick := pool[bestIdx]
		ranked = append(ranked, pick)
		for _, t := range pick.Tokens() {
			used[t] = struct{}{}
		}
		pool = append(pool[:bestIdx], pool[bestIdx+1:]...)
	}
	return ranked
}

func combinedScore(c *Candidate, used map[string]struct{}) float64 {
	tokens := c.Tokens()
	diversity := 10.0
	if len(tokens) > 0 {
		overlap := 0
		for _, t := range tokens {
			if _, ok := used[t]; ok {
				overlap++
			}
		}
		diversity = 10 * (1 - float64(overlap)/float64(len(tokens)))
	}
	return c.Score*(1-diversityWeight) + diversity*diversityWeight
}
