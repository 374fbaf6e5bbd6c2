package possession

import "sort"

// PlayerShare summarises how many frames a player was assigned possession
// and that count as a share of all frames that had a possessor.
type PlayerShare struct {
	PlayerID int64   `json:"player_id"`
	Frames   int     `json:"frames"`
	Share    float64 `json:"share"`
}

// Summarize counts possessed frames per player. Results are ordered by
// frame count descending, then player id, so report output is stable.
func Summarize(assignments []Assignment) []PlayerShare {
	counts := make(map[int64]int)
	total := 0
	for _, a := range assignments {
		if !a.HasPossessor {
			continue
		}
		counts[a.EntityID]++
		total++
	}

	out := make([]PlayerShare, 0, len(counts))
	for id, n := range counts {
		share := 0.0
		if total > 0 {
			share = float64(n) / float64(total)
		}
		out = append(out, PlayerShare{PlayerID: id, Frames: n, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frames != out[j].Frames {
			return out[i].Frames > out[j].Frames
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
