package auction

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

func testRoster() []domain.Player {
	return []domain.Player{
		{Name: "V Kohli", Role: "Batsman", BasePrice: 10_000_000},
		{Name: "J Bumrah", Role: "Bowler", BasePrice: 8_000_000},
		{Name: "R Jadeja", Role: "All-Rounder", BasePrice: 6_000_000},
	}
}

func testRules(auto bool) Rules {
	return Rules{
		InitialBudget: 50_000_000,
		Increment:     5_000,
		Teams:         []domain.TeamID{"CSK", "MI", "RCB"},
		AutoResolve:   auto,
	}
}

// running returns a fresh started auction.
func running(t *testing.T, rules Rules) State {
	t.Helper()
	st, _, err := Apply(testRoster(), rules, NewState(testRoster(), rules), Start())
	assert.Nil(t, err)
	return st
}

func TestApply_RaiseBidIncrementsFromBasePrice(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	check.Equal(t, int64(10_000_000), st.Bid.Amount)
	check.False(t, st.Bid.HasLeader())

	st, ev, err := Apply(roster, rules, st, RaiseBid("CSK"))
	assert.Nil(t, err)
	check.Equal(t, int64(10_005_000), st.Bid.Amount)
	check.Equal(t, domain.TeamID("CSK"), st.Bid.Leader)
	check.Equal(t, EventBidRaised, ev.Kind)

	st, _, err = Apply(roster, rules, st, RaiseBid("MI"))
	assert.Nil(t, err)
	check.Equal(t, int64(10_010_000), st.Bid.Amount)
	check.Equal(t, domain.TeamID("MI"), st.Bid.Leader)
}

func TestApply_BidAmountsStrictlyIncreaseByIncrement(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	prev := st.Bid.Amount
	bidders := []domain.TeamID{"CSK", "MI", "RCB", "CSK", "MI"}
	for i, team := range bidders {
		next, _, err := Apply(roster, rules, st, RaiseBid(team))
		assert.Nil(t, err)
		check.True(t, next.Bid.Amount > prev)
		check.Equal(t, int64(i+1)*rules.Increment, next.Bid.Amount-roster[0].BasePrice)
		prev = next.Bid.Amount
		st = next
	}
}

func TestApply_RaiseByLeaderRejected(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	st, _, err := Apply(roster, rules, st, RaiseBid("CSK"))
	assert.Nil(t, err)

	_, _, err = Apply(roster, rules, st, RaiseBid("CSK"))
	assert.NotNil(t, err)
	check.True(t, errors.Is(err, domain.ErrInvalidBid))

	var bidErr *domain.BidError
	assert.True(t, errors.As(err, &bidErr))
	check.Equal(t, domain.BidReasonAlreadyLeading, bidErr.Reason)
}

func TestApply_InsufficientBudgetRejectedStateUnchanged(t *testing.T) {
	rules := Rules{
		InitialBudget: 4_999,
		Increment:     5_000,
		Teams:         []domain.TeamID{"CSK", "MI"},
	}
	roster := []domain.Player{{Name: "A Nobody", Role: "Batsman", BasePrice: 0}}
	st, _, err := Apply(roster, rules, NewState(roster, rules), Start())
	assert.Nil(t, err)

	next, _, err := Apply(roster, rules, st, RaiseBid("CSK"))
	assert.NotNil(t, err)
	check.True(t, errors.Is(err, domain.ErrInvalidBid))

	var bidErr *domain.BidError
	assert.True(t, errors.As(err, &bidErr))
	check.Equal(t, domain.BidReasonInsufficientBudget, bidErr.Reason)

	// Rejections leave the state untouched.
	check.Equal(t, st.Bid, next.Bid)
	check.Equal(t, st.Teams, next.Teams)
}

func TestApply_ExactNextRaiseBudgetAllowed(t *testing.T) {
	rules := Rules{
		InitialBudget: 5_000,
		Increment:     5_000,
		Teams:         []domain.TeamID{"CSK", "MI"},
	}
	roster := []domain.Player{{Name: "A Nobody", Role: "Batsman", BasePrice: 0}}
	st, _, err := Apply(roster, rules, NewState(roster, rules), Start())
	assert.Nil(t, err)

	// budget == amount + increment must pass (>=, not >).
	st, _, err = Apply(roster, rules, st, RaiseBid("CSK"))
	assert.Nil(t, err)
	check.Equal(t, int64(5_000), st.Bid.Amount)
}

func TestApply_CommandsRejectedUnlessRunning(t *testing.T) {
	rules := testRules(true)
	roster := testRoster()
	st := NewState(roster, rules)

	for _, cmd := range []Command{RaiseBid("CSK"), Decline("CSK"), FinalizeSale(), ForceSale(), MarkUnsold()} {
		_, _, err := Apply(roster, rules, st, cmd)
		check.True(t, errors.Is(err, domain.ErrInvalidCommand))
	}

	st, _, err := Apply(roster, rules, st, Start())
	assert.Nil(t, err)
	st, _, err = Apply(roster, rules, st, Pause())
	assert.Nil(t, err)
	_, _, err = Apply(roster, rules, st, RaiseBid("CSK"))
	check.True(t, errors.Is(err, domain.ErrInvalidCommand))
}

func TestApply_PauseIsIdempotent(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	once, _, err := Apply(roster, rules, st, Pause())
	assert.Nil(t, err)
	twice, _, err := Apply(roster, rules, once, Pause())
	assert.Nil(t, err)

	check.Equal(t, domain.StatusPaused, twice.Status)
	check.Equal(t, once.Cursor, twice.Cursor)
	check.Equal(t, once.Bid, twice.Bid)
	check.Equal(t, once.Teams, twice.Teams)
}

func TestApply_FinalizeSaleDebitsExactlyOneTeam(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	st, _, err := Apply(roster, rules, st, RaiseBid("MI"))
	assert.Nil(t, err)

	st, ev, err := Apply(roster, rules, st, FinalizeSale())
	assert.Nil(t, err)
	check.Equal(t, EventSold, ev.Kind)
	check.Equal(t, domain.TeamID("MI"), ev.Team)
	check.Equal(t, "V Kohli", ev.Player)
	check.Equal(t, int64(10_005_000), ev.Price)

	owners := 0
	for _, team := range st.Teams {
		for _, acq := range team.Acquisitions {
			if acq.Player == "V Kohli" {
				owners++
				check.Equal(t, domain.TeamID("MI"), team.ID)
				check.Equal(t, int64(10_005_000), acq.Price)
			}
		}
		// Ledger invariant holds for every team.
		check.Equal(t, rules.InitialBudget, team.BudgetRemaining+team.TotalSpent)
		check.True(t, team.BudgetRemaining >= 0)
	}
	check.Equal(t, 1, owners)

	// Cursor advanced and the bid reseeded from the next base price.
	check.Equal(t, 1, st.Cursor)
	check.Equal(t, "J Bumrah", st.Current.Name)
	check.Equal(t, int64(8_000_000), st.Bid.Amount)
	check.False(t, st.Bid.HasLeader())
}

func TestApply_FinalizeWithoutLeaderRejected(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	_, _, err := Apply(roster, rules, st, FinalizeSale())
	check.True(t, errors.Is(err, domain.ErrNoActiveBid))
}

func TestApply_MarkUnsoldIgnoresLeader(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	st, _, err := Apply(roster, rules, st, RaiseBid("MI"))
	assert.Nil(t, err)

	st, ev, err := Apply(roster, rules, st, MarkUnsold())
	assert.Nil(t, err)
	check.Equal(t, EventUnsold, ev.Kind)
	check.Equal(t, "V Kohli", ev.Player)
	check.Equal(t, []string{"V Kohli"}, st.Unsold)

	// No ledger mutation for the erstwhile leader.
	mi, ok := st.Team("MI")
	assert.True(t, ok)
	check.Equal(t, rules.InitialBudget, mi.BudgetRemaining)
	check.Equal(t, int64(0), mi.TotalSpent)
	check.Equal(t, 0, len(mi.Acquisitions))

	check.Equal(t, 1, st.Cursor)
	check.False(t, st.Bid.HasLeader())
}

func TestApply_ForceSaleWithoutLeaderGoesUnsold(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	st, ev, err := Apply(roster, rules, st, ForceSale())
	assert.Nil(t, err)
	check.Equal(t, EventUnsold, ev.Kind)
	check.Equal(t, []string{"V Kohli"}, st.Unsold)
	check.Equal(t, 1, st.Cursor)
}

func TestApply_AutoResolutionClosesFloor(t *testing.T) {
	rules := testRules(true)
	roster := testRoster()
	st := running(t, rules)

	st, _, err := Apply(roster, rules, st, RaiseBid("CSK"))
	assert.Nil(t, err)
	st, _, err = Apply(roster, rules, st, Decline("MI"))
	assert.Nil(t, err)

	st, ev, err := Apply(roster, rules, st, Decline("RCB"))
	assert.Nil(t, err)
	check.Equal(t, EventSold, ev.Kind)
	check.True(t, ev.Auto)
	check.Equal(t, domain.TeamID("CSK"), ev.Team)
	check.Equal(t, int64(10_005_000), ev.Price)
	check.Equal(t, 1, st.Cursor)

	csk, ok := st.Team("CSK")
	assert.True(t, ok)
	check.Equal(t, int64(10_005_000), csk.TotalSpent)
	check.Equal(t, rules.InitialBudget-10_005_000, csk.BudgetRemaining)
}

func TestApply_AllDeclinedWithoutBidNeverAutoResolves(t *testing.T) {
	rules := testRules(true)
	roster := testRoster()
	st := running(t, rules)

	var err error
	for _, team := range rules.Teams {
		st, _, err = Apply(roster, rules, st, Decline(team))
		assert.Nil(t, err)
	}

	// Floor stays open; the admin must resolve explicitly.
	check.Equal(t, 0, st.Cursor)
	check.False(t, st.Bid.HasLeader())

	st, ev, err := Apply(roster, rules, st, MarkUnsold())
	assert.Nil(t, err)
	check.Equal(t, EventUnsold, ev.Kind)
	check.Equal(t, 1, st.Cursor)
}

func TestApply_NewLeadingBidReopensDeclinedTeams(t *testing.T) {
	rules := testRules(true)
	roster := testRoster()
	st := running(t, rules)

	st, _, err := Apply(roster, rules, st, RaiseBid("CSK"))
	assert.Nil(t, err)
	st, _, err = Apply(roster, rules, st, Decline("MI"))
	assert.Nil(t, err)

	// RCB takes the lead, which clears MI's decline.
	st, _, err = Apply(roster, rules, st, RaiseBid("RCB"))
	assert.Nil(t, err)
	check.Equal(t, 0, len(st.Bid.Declined))

	// MI may now bid again.
	st, _, err = Apply(roster, rules, st, RaiseBid("MI"))
	assert.Nil(t, err)
	check.Equal(t, domain.TeamID("MI"), st.Bid.Leader)
}

func TestApply_DeclineRejectedInManualMode(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	_, _, err := Apply(roster, rules, st, Decline("MI"))
	check.True(t, errors.Is(err, domain.ErrInvalidCommand))
}

func TestApply_DeclineTwiceRejected(t *testing.T) {
	rules := testRules(true)
	roster := testRoster()
	st := running(t, rules)

	st, _, err := Apply(roster, rules, st, Decline("MI"))
	assert.Nil(t, err)
	_, _, err = Apply(roster, rules, st, Decline("MI"))
	assert.NotNil(t, err)

	var bidErr *domain.BidError
	assert.True(t, errors.As(err, &bidErr))
	check.Equal(t, domain.BidReasonAlreadyDeclined, bidErr.Reason)
}

func TestApply_UnknownTeamRejected(t *testing.T) {
	rules := testRules(true)
	roster := testRoster()
	st := running(t, rules)

	_, _, err := Apply(roster, rules, st, RaiseBid("GT"))
	var bidErr *domain.BidError
	assert.True(t, errors.As(err, &bidErr))
	check.Equal(t, domain.BidReasonUnknownTeam, bidErr.Reason)
}

func TestApply_RosterExhausted(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	var err error
	for range roster {
		st, _, err = Apply(roster, rules, st, MarkUnsold())
		assert.Nil(t, err)
	}
	check.True(t, st.Complete)
	check.Nil(t, st.Current)

	_, _, err = Apply(roster, rules, st, RaiseBid("CSK"))
	check.True(t, errors.Is(err, domain.ErrRosterExhausted))
	_, _, err = Apply(roster, rules, st, MarkUnsold())
	check.True(t, errors.Is(err, domain.ErrRosterExhausted))
}

func TestApply_ResetRestoresEverything(t *testing.T) {
	rules := testRules(false)
	roster := testRoster()
	st := running(t, rules)

	st, _, err := Apply(roster, rules, st, RaiseBid("CSK"))
	assert.Nil(t, err)
	st, _, err = Apply(roster, rules, st, FinalizeSale())
	assert.Nil(t, err)
	st, _, err = Apply(roster, rules, st, MarkUnsold())
	assert.Nil(t, err)

	st, ev, err := Apply(roster, rules, st, Reset())
	assert.Nil(t, err)
	check.Equal(t, EventReset, ev.Kind)
	check.Equal(t, domain.StatusStopped, st.Status)
	check.Equal(t, 0, st.Cursor)
	check.Equal(t, 0, len(st.Unsold))
	check.Equal(t, roster[0].BasePrice, st.Bid.Amount)
	for _, team := range st.Teams {
		check.Equal(t, rules.InitialBudget, team.BudgetRemaining)
		check.Equal(t, int64(0), team.TotalSpent)
		check.Equal(t, 0, len(team.Acquisitions))
	}
}
