package tracking

import "sort"

// Player holds roster metadata for one tracked player. It is used purely to
// label and group derived output (team sheets, report rows); the kinematics
// and possession math never consult it.
type Player struct {
	ID       int64
	Name     string
	JerseyNo int
	TeamID   int64
	TeamName string
	Position string // starting position label, e.g. "CF"
}

// Roster is the resolved set of players for a match. It is passed explicitly
// into any component that labels output by team or position rather than held
// as ambient state.
type Roster struct {
	players map[int64]Player
}

// NewRoster builds a roster from player metadata. Duplicate ids keep the
// last entry.
func NewRoster(players []Player) *Roster {
	r := &Roster{players: make(map[int64]Player, len(players))}
	for _, p := range players {
		r.players[p.ID] = p
	}
	return r
}

// Player looks up roster metadata by entity id.
func (r *Roster) Player(id int64) (Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Len returns the number of rostered players.
func (r *Roster) Len() int {
	return len(r.players)
}

// IDs returns all player ids in ascending order.
func (r *Roster) IDs() []int64 {
	ids := make([]int64, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ByTeam returns the players for one team ordered by jersey number.
func (r *Roster) ByTeam(teamID int64) []Player {
	out := make([]Player, 0)
	for _, p := range r.players {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JerseyNo != out[j].JerseyNo {
			return out[i].JerseyNo < out[j].JerseyNo
		}
		return out[i].ID < out[j].ID
	})
	return out
}
