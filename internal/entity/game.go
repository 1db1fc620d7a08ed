package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	StatusInProgress = "in_progress"
	StatusWon        = "won"
	StatusDrawn      = "drawn"
)

// GameStatus is derived from a board and never stored apart from it.
type GameStatus struct {
	State  string `json:"state"`
	Winner Side   `json:"winner,omitempty"`
}

// StatusOf - computes the status of the board.
func StatusOf(board Board) GameStatus {
	if winner, ok := board.Winner(); ok {
		return GameStatus{State: StatusWon, Winner: winner}
	}

	if board.IsFull() {
		return GameStatus{State: StatusDrawn}
	}

	return GameStatus{State: StatusInProgress}
}

func (that GameStatus) IsTerminal() bool {
	return that.State == StatusWon || that.State == StatusDrawn
}

func (that GameStatus) IsWon() bool {
	return that.State == StatusWon
}

func (that GameStatus) IsDrawn() bool {
	return that.State == StatusDrawn
}

// TurnPhase tells the caller which operation the engine expects next.
type TurnPhase string

const (
	PhaseAwaitingPlayerMove TurnPhase = "awaiting_player_move"
	PhaseAwaitingAIMove     TurnPhase = "awaiting_ai_move"
	PhaseFinished           TurnPhase = "finished"
)

// Difficulty selects the AI policy.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(value string) (Difficulty, error) {
	difficulty := Difficulty(strings.ToLower(strings.TrimSpace(value)))
	if !difficulty.IsValid() {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, value)
	}

	return difficulty, nil
}

func (that Difficulty) IsValid() bool {
	switch that {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

func (that *Difficulty) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to unmarshal difficulty: %w", err)
	}

	difficulty, err := ParseDifficulty(value)
	if err != nil {
		return err
	}

	*that = difficulty

	return nil
}

// Snapshot is a read-only copy of the engine state handed to the presentation layer.
type Snapshot struct {
	Board       Board      `json:"board"`
	Phase       TurnPhase  `json:"phase"`
	Status      GameStatus `json:"status"`
	CurrentTurn Side       `json:"current_turn,omitempty"`
	PlayerSide  Side       `json:"player_side"`
	AISide      Side       `json:"ai_side"`
	Difficulty  Difficulty `json:"difficulty"`

	WinningLine []Position `json:"winning_line,omitempty"`
}

func (that Snapshot) IsFinished() bool {
	return that.Phase == PhaseFinished
}
