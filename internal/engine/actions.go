package engine

import "github.com/napolitain/kingdom/internal/models"

// AppendAction returns a new log with a appended; the input slice is never written
func AppendAction(actions []models.GameAction, a models.GameAction) []models.GameAction {
	out := make([]models.GameAction, len(actions), len(actions)+1)
	copy(out, actions)
	return append(out, a)
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func Recent(actions []models.GameAction, n int) []models.GameAction {
	if n <= 0 || n > len(actions) {
		n = len(actions)
	}
	out := make([]models.GameAction, 0, n)
	for i := len(actions) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, actions[i])
	}
	return out
}

// CountActions returns how many entries of the given type the log holds
func CountActions(actions []models.GameAction, typ models.ActionType) int {
	n := 0
	for _, a := range actions {
		if a.Type == typ {
			n++
		}
	}
	return n
}
