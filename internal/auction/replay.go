package auction

import "github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"

// Replay rebuilds an auction state from the persisted result log. Each record
// resolves one roster entry in order: a team row applies the sale to that
// team's ledger, an unsold row passes the player. Rows referencing unknown
// teams or exceeding a ledger are skipped rather than corrupting the replay.
func Replay(roster []domain.Player, rules Rules, results []domain.ResultRecord) State {
	st := NewState(roster, rules)
	for _, rec := range results {
		if st.Complete {
			break
		}
		if rec.Team == domain.UnsoldTeam {
			st.Unsold = append(st.Unsold, rec.Player)
		} else if t, ok := st.Team(domain.TeamID(rec.Team)); ok {
			_ = t.ApplySale(rec.Player, rec.Price)
		}
		st.Cursor++
		seedBid(&st, roster)
	}
	st.Version = int64(len(results))
	return st
}
