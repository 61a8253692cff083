package auction

import "github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"

// Kind enumerates the commands the engine accepts.
type Kind string

const (
	CmdStart        Kind = "start"
	CmdPause        Kind = "pause"
	CmdReset        Kind = "reset"
	CmdRaiseBid     Kind = "raise_bid"
	CmdDecline      Kind = "decline"
	CmdFinalizeSale Kind = "finalize_sale"
	CmdForceSale    Kind = "force_sale"
	CmdMarkUnsold   Kind = "mark_unsold"
)

// Command is one request against the auction. Team is set only for the
// team-issued commands (raise_bid, decline).
type Command struct {
	Kind Kind          `json:"kind"`
	Team domain.TeamID `json:"team,omitempty"`
}

func Start() Command        { return Command{Kind: CmdStart} }
func Pause() Command        { return Command{Kind: CmdPause} }
func Reset() Command        { return Command{Kind: CmdReset} }
func FinalizeSale() Command { return Command{Kind: CmdFinalizeSale} }
func ForceSale() Command    { return Command{Kind: CmdForceSale} }
func MarkUnsold() Command   { return Command{Kind: CmdMarkUnsold} }

func RaiseBid(team domain.TeamID) Command {
	return Command{Kind: CmdRaiseBid, Team: team}
}

func Decline(team domain.TeamID) Command {
	return Command{Kind: CmdDecline, Team: team}
}

// EventKind enumerates the effects an accepted command can have.
type EventKind string

const (
	EventStatusChanged EventKind = "status_changed"
	EventReset         EventKind = "reset"
	EventBidRaised     EventKind = "bid_raised"
	EventDeclined      EventKind = "declined"
	EventSold          EventKind = "sold"
	EventUnsold        EventKind = "unsold"
)

// Event describes what an accepted command did. Sold and unsold events carry
// everything the result log needs; Auto marks a sale closed by
// auto-resolution rather than an explicit finalize.
type Event struct {
	Kind   EventKind     `json:"kind"`
	Team   domain.TeamID `json:"team,omitempty"`
	Player string        `json:"player,omitempty"`
	Price  int64         `json:"price,omitempty"`
	Auto   bool          `json:"auto,omitempty"`
}
