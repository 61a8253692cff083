package auction

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

func TestReplayRebuildsLedgersAndCursor(t *testing.T) {
	roster := testRoster()
	rules := testRules(false)

	results := []domain.ResultRecord{
		{Team: "CSK", Player: "V Kohli", Price: 10_005_000},
		{Team: domain.UnsoldTeam, Player: "J Bumrah"},
	}

	st := Replay(roster, rules, results)

	check.Equal(t, 2, st.Cursor)
	check.Equal(t, int64(2), st.Version)
	check.False(t, st.Complete)
	assert.NotNil(t, st.Current)
	check.Equal(t, roster[2].Name, st.Current.Name)

	csk, ok := st.Team("CSK")
	assert.True(t, ok)
	check.Equal(t, rules.InitialBudget-10_005_000, csk.BudgetRemaining)
	check.Equal(t, 1, len(csk.Acquisitions))
	check.Equal(t, []string{"J Bumrah"}, st.Unsold)
}

func TestReplayFullLogCompletes(t *testing.T) {
	roster := testRoster()
	rules := testRules(false)

	results := []domain.ResultRecord{
		{Team: "CSK", Player: roster[0].Name, Price: roster[0].BasePrice},
		{Team: "MI", Player: roster[1].Name, Price: roster[1].BasePrice},
		{Team: domain.UnsoldTeam, Player: roster[2].Name},
	}

	st := Replay(roster, rules, results)

	check.True(t, st.Complete)
	check.Nil(t, st.Current)
}

func TestReplayEmptyLogIsInitialState(t *testing.T) {
	roster := testRoster()
	rules := testRules(false)

	st := Replay(roster, rules, nil)

	check.Equal(t, int64(0), st.Version)
	check.Equal(t, 0, st.Cursor)
	check.Equal(t, domain.StatusStopped, st.Status)
}
