package model

// TranscriptMessage is one utterance within a conversation.
type TranscriptMessage struct {
	Role      string  `json:"role"`
	Message   string  `json:"message"`
	Timestamp float64 `json:"timestamp"`
}

// TranscriptMetadata describes the conversation the transcript belongs to.
type TranscriptMetadata struct {
	Duration int    `json:"duration"`
	AgentID  string `json:"agentId"`
}

// ConversationTranscript is the post-completion artifact for one conversation.
type ConversationTranscript struct {
	ConversationID string
	Messages       []TranscriptMessage
	Metadata       TranscriptMetadata
}

// ConversationSummary is one row of the conversation listing. The listing is
// ordered most-recent first; index 0 is the canonical latest conversation.
type ConversationSummary struct {
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id,omitempty"`
	Status         string `json:"status,omitempty"`
	StartTime      int64  `json:"start_time_unix_secs,omitempty"`
}
