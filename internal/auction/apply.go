package auction

import "github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"

// Apply computes the state transition for one command. It validates fully
// before mutating: on any error the returned state is the input state,
// unchanged. Apply never touches shared data, so it is safe to call from
// tests without an Engine.
func Apply(roster []domain.Player, rules Rules, st State, cmd Command) (State, Event, error) {
	switch cmd.Kind {
	case CmdStart:
		next := st.clone()
		next.Status = domain.StatusRunning
		return next, Event{Kind: EventStatusChanged}, nil
	case CmdPause:
		next := st.clone()
		next.Status = domain.StatusPaused
		return next, Event{Kind: EventStatusChanged}, nil
	case CmdReset:
		// Always permitted. Budgets, ledgers, cursor, and bid all reinit;
		// the caller is responsible for purging the result log.
		return NewState(roster, rules), Event{Kind: EventReset}, nil
	}

	// Item-level commands require a running auction with players left.
	if st.Status != domain.StatusRunning {
		return st, Event{}, domain.ErrInvalidCommand
	}
	if st.Complete {
		return st, Event{}, domain.ErrRosterExhausted
	}

	switch cmd.Kind {
	case CmdRaiseBid:
		return applyRaise(roster, rules, st, cmd.Team)
	case CmdDecline:
		return applyDecline(roster, rules, st, cmd.Team)
	case CmdFinalizeSale:
		return applySale(roster, st, false)
	case CmdForceSale:
		// Admin override: with a leader this is a normal sale; without one
		// the player goes to the unsold list instead of blocking.
		if st.Bid.HasLeader() {
			return applySale(roster, st, false)
		}
		return applyUnsold(roster, st)
	case CmdMarkUnsold:
		return applyUnsold(roster, st)
	default:
		return st, Event{}, domain.ErrInvalidCommand
	}
}

func applyRaise(roster []domain.Player, rules Rules, st State, team domain.TeamID) (State, Event, error) {
	next := st.clone()
	ledger, ok := next.Team(team)
	if !ok {
		return st, Event{}, &domain.BidError{Team: team, Reason: domain.BidReasonUnknownTeam}
	}
	if next.Bid.Leader == team {
		return st, Event{}, &domain.BidError{Team: team, Reason: domain.BidReasonAlreadyLeading}
	}
	if next.Bid.HasDeclined(team) {
		return st, Event{}, &domain.BidError{Team: team, Reason: domain.BidReasonAlreadyDeclined}
	}
	// >= so a team must still be able to cover the raise it is making.
	if ledger.BudgetRemaining < next.Bid.Amount+rules.Increment {
		return st, Event{}, &domain.BidError{Team: team, Reason: domain.BidReasonInsufficientBudget}
	}

	next.Bid.Amount += rules.Increment
	next.Bid.Leader = team
	// A new leading bid reopens the floor for every team that had declined.
	next.Bid.Declined = nil

	if rules.AutoResolve && floorClosed(rules, next.Bid) {
		// Only possible in a one-team auction, but the rule is uniform.
		return applySale(roster, next, true)
	}
	return next, Event{Kind: EventBidRaised, Team: team, Player: next.Current.Name, Price: next.Bid.Amount}, nil
}

func applyDecline(roster []domain.Player, rules Rules, st State, team domain.TeamID) (State, Event, error) {
	if !rules.AutoResolve {
		return st, Event{}, domain.ErrInvalidCommand
	}
	next := st.clone()
	if _, ok := next.Team(team); !ok {
		return st, Event{}, &domain.BidError{Team: team, Reason: domain.BidReasonUnknownTeam}
	}
	if next.Bid.Leader == team {
		return st, Event{}, &domain.BidError{Team: team, Reason: domain.BidReasonAlreadyLeading}
	}
	if next.Bid.HasDeclined(team) {
		return st, Event{}, &domain.BidError{Team: team, Reason: domain.BidReasonAlreadyDeclined}
	}

	next.Bid.Declined = append(next.Bid.Declined, team)

	// Floor closes only when a leader exists; if every team declines with no
	// bid placed, the admin must mark the player unsold explicitly.
	if floorClosed(rules, next.Bid) {
		return applySale(roster, next, true)
	}
	return next, Event{Kind: EventDeclined, Team: team, Player: next.Current.Name}, nil
}

// floorClosed reports whether every team other than the leader has declined.
func floorClosed(rules Rules, bid Bid) bool {
	if !bid.HasLeader() {
		return false
	}
	for _, id := range rules.Teams {
		if id == bid.Leader || bid.HasDeclined(id) {
			continue
		}
		return false
	}
	return true
}

// applySale finalizes the current player to the leading team and advances the
// cursor. The state passed in is already a private copy.
func applySale(roster []domain.Player, st State, auto bool) (State, Event, error) {
	if !st.Bid.HasLeader() {
		return st, Event{}, domain.ErrNoActiveBid
	}
	next := st.clone()
	ledger, _ := next.Team(next.Bid.Leader)
	player := next.Current.Name
	price := next.Bid.Amount
	if err := ledger.ApplySale(player, price); err != nil {
		// Unreachable while raise preconditions hold; kept as a guard on the
		// budget invariant.
		return st, Event{}, err
	}
	ev := Event{Kind: EventSold, Team: ledger.ID, Player: player, Price: price, Auto: auto}
	advance(&next, roster)
	return next, ev, nil
}

func applyUnsold(roster []domain.Player, st State) (State, Event, error) {
	next := st.clone()
	player := next.Current.Name
	next.Unsold = append(next.Unsold, player)
	ev := Event{Kind: EventUnsold, Player: player}
	advance(&next, roster)
	return next, ev, nil
}

// advance moves the cursor to the next player and reseeds the bid.
func advance(st *State, roster []domain.Player) {
	st.Cursor++
	seedBid(st, roster)
}
