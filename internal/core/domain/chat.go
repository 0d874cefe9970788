package domain

// ChatSettings is the effective (defaults applied) view of a chat's
// preferences.
type ChatSettings struct {
	Pipeline string `json:"pipeline"`
	Verbose  bool   `json:"verbose"`
}

// ChatReply is a rendered answer for the chat front-end.
type ChatReply struct {
	AnswerID string `json:"answer_id,omitempty"`
	Text     string `json:"text"`
	NoAnswer bool   `json:"no_answer"`
}
