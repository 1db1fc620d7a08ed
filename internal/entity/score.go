package entity

// ScoreTally counts finished games for one engine lifetime.
type ScoreTally struct {
	PlayerWins uint `json:"player_wins"`
	AIWins     uint `json:"ai_wins"`
	Draws      uint `json:"draws"`
}

// Record - counts a finished game. winner is ignored for a draw.
func (that *ScoreTally) Record(status GameStatus, playerSide Side) {
	switch {
	case status.IsDrawn():
		that.Draws++
	case status.IsWon() && status.Winner == playerSide:
		that.PlayerWins++
	case status.IsWon():
		that.AIWins++
	}
}

func (that ScoreTally) Total() uint {
	return that.PlayerWins + that.AIWins + that.Draws
}
