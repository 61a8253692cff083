// Package auction implements the auction state machine. State transitions are
// pure functions of (state, command); the Engine owns the canonical state and
// serializes command application behind a mutex, so at any instant exactly one
// command mutates the auction.
package auction

import "github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"

// Bid is the active bid on the player currently under the hammer. Leader is
// empty until the first raise is accepted, in which case Amount equals the
// player's base price.
type Bid struct {
	Amount   int64           `json:"amount"`
	Leader   domain.TeamID   `json:"leader,omitempty"`
	Declined []domain.TeamID `json:"declined,omitempty"`
}

// HasLeader reports whether at least one bid has been accepted.
func (b Bid) HasLeader() bool {
	return b.Leader != ""
}

// HasDeclined reports whether the given team has opted out of this player.
func (b Bid) HasDeclined(id domain.TeamID) bool {
	for _, d := range b.Declined {
		if d == id {
			return true
		}
	}
	return false
}

// State is a full snapshot of the auction. Every accepted command produces a
// new State with Version bumped by one; callers never observe a partially
// applied mutation.
type State struct {
	Version  int64                `json:"version"`
	Status   domain.AuctionStatus `json:"status"`
	Cursor   int                  `json:"cursor"`
	Current  *domain.Player       `json:"current,omitempty"` // nil once the roster is exhausted
	Bid      Bid                  `json:"bid"`
	Teams    []domain.Team        `json:"teams"`
	Unsold   []string             `json:"unsold"`
	Complete bool                 `json:"complete"`
}

// Team returns a pointer to the ledger for the given team id, or false when
// the id is not part of this auction.
func (s *State) Team(id domain.TeamID) (*domain.Team, bool) {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i], true
		}
	}
	return nil, false
}

// clone returns a deep copy so the engine can hand out snapshots without
// aliasing its canonical state.
func (s State) clone() State {
	out := s
	if s.Current != nil {
		cur := *s.Current
		out.Current = &cur
	}
	out.Bid.Declined = append([]domain.TeamID(nil), s.Bid.Declined...)
	out.Unsold = append([]string{}, s.Unsold...)
	out.Teams = make([]domain.Team, len(s.Teams))
	for i, t := range s.Teams {
		t.Acquisitions = append([]domain.Acquisition{}, t.Acquisitions...)
		out.Teams[i] = t
	}
	return out
}

// Rules are the fixed parameters of one auction run.
type Rules struct {
	InitialBudget int64
	Increment     int64
	Teams         []domain.TeamID
	// AutoResolve enables the decline command and closes the floor
	// automatically once every non-leading team has declined.
	AutoResolve bool
}

// NewState builds the initial stopped state: full budgets, empty ledgers, and
// the bid seeded from the first roster entry.
func NewState(roster []domain.Player, rules Rules) State {
	teams := make([]domain.Team, 0, len(rules.Teams))
	for _, id := range rules.Teams {
		teams = append(teams, domain.NewTeam(id, rules.InitialBudget))
	}
	st := State{
		Status: domain.StatusStopped,
		Teams:  teams,
		Unsold: []string{},
	}
	seedBid(&st, roster)
	return st
}

// seedBid points the state at roster[cursor]: bid amount at base price, no
// leader, no declines. Past the end of the roster the auction is complete.
func seedBid(st *State, roster []domain.Player) {
	if st.Cursor < len(roster) {
		p := roster[st.Cursor]
		st.Current = &p
		st.Bid = Bid{Amount: p.BasePrice}
		st.Complete = false
		return
	}
	st.Current = nil
	st.Bid = Bid{}
	st.Complete = true
}
