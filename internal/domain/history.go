package domain

// History is the ordered record of a conversation's turns: two index-aligned
// sequences of user and assistant texts. Appends happen only after a
// successful reply, so both sequences are always the same length. Turn
// handling is serialized upstream, so History carries no lock.
type History struct {
	userTurns      []string
	assistantTurns []string
}

// Append records one completed turn.
func (h *History) Append(userMessage, assistantReply string) {
	h.userTurns = append(h.userTurns, userMessage)
	h.assistantTurns = append(h.assistantTurns, assistantReply)
}

// Len returns the number of completed turns.
func (h *History) Len() int {
	return len(h.userTurns)
}

// Turns returns the full ordered sequence of turns. Pure projection; the
// returned slice is a copy.
func (h *History) Turns() []Turn {
	turns := make([]Turn, len(h.userTurns))
	for i := range h.userTurns {
		turns[i] = Turn{User: h.userTurns[i], Assistant: h.assistantTurns[i]}
	}
	return turns
}
