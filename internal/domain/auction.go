package domain

import "time"

// AuctionStatus represents the lifecycle state of the overall auction.
type AuctionStatus string

const (
	StatusStopped AuctionStatus = "stopped"
	StatusRunning AuctionStatus = "running"
	StatusPaused  AuctionStatus = "paused"
)

// TeamID identifies one of the fixed set of bidding teams (e.g. "CSK", "MI").
type TeamID string

// Player is a single biddable roster entry. Players are immutable after load;
// identity is the position in the roster, so duplicate names are permitted.
type Player struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	BasePrice int64  `json:"base_price"`
}

// Acquisition records one player bought by a team and the hammer price.
type Acquisition struct {
	Player string `json:"player"`
	Price  int64  `json:"price"`
}

// Team is the per-team ledger: budget remaining, total spent, and the
// acquired players in purchase order.
//
// Invariant: BudgetRemaining + TotalSpent equals the initial budget, and
// BudgetRemaining never goes negative.
type Team struct {
	ID              TeamID        `json:"id"`
	BudgetRemaining int64         `json:"budget_remaining"`
	TotalSpent      int64         `json:"total_spent"`
	Acquisitions    []Acquisition `json:"acquisitions"`
}

// NewTeam creates a fresh ledger with the full budget and no acquisitions.
func NewTeam(id TeamID, budget int64) Team {
	return Team{
		ID:              id,
		BudgetRemaining: budget,
		Acquisitions:    []Acquisition{},
	}
}

// ApplySale atomically debits the budget, credits total spent, and appends
// the acquisition. Callers must have already verified affordability; a price
// above the remaining budget is rejected so the ledger can never go negative.
func (t *Team) ApplySale(player string, price int64) error {
	if price > t.BudgetRemaining {
		return ErrInvalidBid
	}
	t.BudgetRemaining -= price
	t.TotalSpent += price
	t.Acquisitions = append(t.Acquisitions, Acquisition{Player: player, Price: price})
	return nil
}

// UnsoldTeam is the sentinel team name recorded for players that went unsold.
const UnsoldTeam = "UNSOLD"

// ResultRecord is one finalized outcome in the append-only result log.
// Team is either a TeamID or the UnsoldTeam sentinel.
type ResultRecord struct {
	ID        int64     `json:"id"`
	Team      string    `json:"team"`
	Player    string    `json:"player"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}
