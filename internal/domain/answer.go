package domain

// Turn is one (user message, assistant reply) pair.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// AnswerOptions are the optional augmentation switches an answering engine
// may support: web search, external document lookup, external agent actions.
// This deployment runs with all of them off.
type AnswerOptions struct {
	Search    bool `json:"search,omitempty"`
	Documents bool `json:"documents,omitempty"`
	Actions   bool `json:"actions,omitempty"`
}

// AnswerRequest carries everything the answering engine needs for one turn.
// History is the conversation so far, not including Message.
type AnswerRequest struct {
	MessageID string
	History   []Turn
	Message   string
	Template  string
	Character Character
	Options   AnswerOptions
}
