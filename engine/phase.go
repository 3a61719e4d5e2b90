package engine

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/nathoo/fraycore/types"
)

// Phase machine events.
const (
	evAwaitPlayer = "await_player"
	evAwaitEnemy  = "await_enemy"
	evExecute     = "execute"
	evWin         = "win"
	evLose        = "lose"
	evEscape      = "escape"
)

// newPhaseMachine builds the combat phase machine. Terminal phases are
// reachable from start so an empty side ends the battle at once.
func newPhaseMachine(logger *zap.Logger) *fsm.FSM {
	start := string(types.PhaseStart)
	selecting := string(types.PhaseSelectingAction)
	enemy := string(types.PhaseEnemyTurn)
	executing := string(types.PhaseExecutingAction)

	return fsm.NewFSM(
		start,
		fsm.Events{
			{Name: evAwaitPlayer, Src: []string{start, executing}, Dst: selecting},
			{Name: evAwaitEnemy, Src: []string{start, executing}, Dst: enemy},
			{Name: evExecute, Src: []string{selecting, enemy}, Dst: executing},
			{Name: evWin, Src: []string{start, executing}, Dst: string(types.PhaseVictory)},
			{Name: evLose, Src: []string{start, executing}, Dst: string(types.PhaseDefeat)},
			{Name: evEscape, Src: []string{executing}, Dst: string(types.PhaseFled)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("phase transition",
					zap.String("event", e.Event),
					zap.String("from", e.Src),
					zap.String("to", e.Dst),
				)
			},
		},
	)
}

// IsTerminal reports whether a phase ends the battle.
func IsTerminal(p types.Phase) bool {
	return p == types.PhaseVictory || p == types.PhaseDefeat || p == types.PhaseFled
}

func outcomeEvent(o types.Outcome) string {
	switch o {
	case types.OutcomeVictory:
		return evWin
	case types.OutcomeDefeat:
		return evLose
	default:
		return evEscape
	}
}

func outcomeOf(p types.Phase) types.Outcome {
	switch p {
	case types.PhaseVictory:
		return types.OutcomeVictory
	case types.PhaseDefeat:
		return types.OutcomeDefeat
	case types.PhaseFled:
		return types.OutcomeFled
	default:
		return types.OutcomeNone
	}
}
