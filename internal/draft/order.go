package draft

// Type is the pick-order rule of a draft
type Type string

const (
	Snake  Type = "snake"
	Linear Type = "linear"
)

// RoundOf returns the 1-based round of an overall pick
func RoundOf(pick, numTeams int) int {
	if numTeams <= 0 || pick <= 0 {
		return 0
	}
	return (pick-1)/numTeams + 1
}

// PickInRound returns the 1-based position of an overall pick within its round
func PickInRound(pick, numTeams int) int {
	if numTeams <= 0 || pick <= 0 {
		return 0
	}
	return (pick-1)%numTeams + 1
}

// TeamOnClock returns the draft slot that owns an overall pick.
// Snake drafts reverse the order in even rounds.
func TeamOnClock(pick, numTeams int, t Type) int {
	inRound := PickInRound(pick, numTeams)
	if t == Snake && RoundOf(pick, numTeams)%2 == 0 {
		return numTeams - inRound + 1
	}
	return inRound
}

// OverallPick is the inverse of TeamOnClock for a given round
func OverallPick(round, team, numTeams int, t Type) int {
	inRound := team
	if t == Snake && round%2 == 0 {
		inRound = numTeams - team + 1
	}
	return (round-1)*numTeams + inRound
}
