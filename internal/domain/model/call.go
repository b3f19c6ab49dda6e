package model

// CallStatus is the remote service's view of a call job. Transitions are
// monotonic toward exactly one terminal status per attempt.
type CallStatus string

const (
	CallQueued     CallStatus = "queued"
	CallRinging    CallStatus = "ringing"
	CallInProgress CallStatus = "in-progress"
	CallCompleted  CallStatus = "completed"
	CallFailed     CallStatus = "failed"
	CallBusy       CallStatus = "busy"
	CallNoAnswer   CallStatus = "no-answer"
)

// Terminal reports whether no further transition is expected for the job.
func (s CallStatus) Terminal() bool {
	switch s {
	case CallCompleted, CallFailed, CallBusy, CallNoAnswer:
		return true
	}
	return false
}

// CallJob is one call attempt as observed through the status endpoint.
// It is never persisted locally; the remote service owns all mutation.
type CallJob struct {
	CallID         string
	ConversationID string
	Status         CallStatus
	Duration       int // seconds, meaningful once completed
}
