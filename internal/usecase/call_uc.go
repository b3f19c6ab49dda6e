// File: internal/usecase/call_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"outreach-call-harness/internal/domain"
	"outreach-call-harness/internal/domain/model"
	"outreach-call-harness/internal/domain/ports/adapter"
	"outreach-call-harness/internal/infra/metrics"
	"outreach-call-harness/internal/report"
	"outreach-call-harness/internal/retry"
)

// Compile-time check
var _ CallUseCase = (*callUC)(nil)

const defaultStatusInterval = 5 * time.Second

// MonitorOutcome classifies how a monitoring session ended. A timeout is
// logically distinct from a terminal failure: the remote side may still be
// processing the call.
type MonitorOutcome int

const (
	MonitorCompleted MonitorOutcome = iota
	MonitorFailed
	MonitorBusy
	MonitorNoAnswer
	MonitorTimedOut
)

func (o MonitorOutcome) String() string {
	switch o {
	case MonitorCompleted:
		return "completed"
	case MonitorFailed:
		return "failed"
	case MonitorBusy:
		return "busy"
	case MonitorNoAnswer:
		return "no-answer"
	case MonitorTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

type CallUseCase interface {
	Initiate(ctx context.Context, phoneNumber string) (*model.CallJob, error)
	Monitor(ctx context.Context, callID string, maxWait time.Duration) (MonitorOutcome, *model.CallJob, error)
	Transcript(ctx context.Context, conversationID string) (*model.ConversationTranscript, error)
	Conversations(ctx context.Context) ([]model.ConversationSummary, error)
}

type callUC struct {
	api      adapter.CallAPI
	rep      *report.Reporter
	log      *zerolog.Logger
	interval time.Duration
}

func NewCallUseCase(api adapter.CallAPI, rep *report.Reporter, logger *zerolog.Logger, statusInterval time.Duration) *callUC {
	if statusInterval <= 0 {
		statusInterval = defaultStatusInterval
	}
	return &callUC{api: api, rep: rep, log: logger, interval: statusInterval}
}

func (c *callUC) Initiate(ctx context.Context, phoneNumber string) (*model.CallJob, error) {
	c.rep.Infof("Calling %s...", phoneNumber)
	job, err := c.api.InitiateCall(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	c.rep.Successf("Call initiated!")
	c.rep.Infof("Call ID: %s", job.CallID)
	c.rep.Infof("Conversation ID: %s", job.ConversationID)
	return job, nil
}

// Monitor polls the status endpoint until the job reaches a terminal state
// or the wait budget runs out. Each status change is reported exactly once;
// repeated observations of the same status stay silent.
func (c *callUC) Monitor(ctx context.Context, callID string, maxWait time.Duration) (MonitorOutcome, *model.CallJob, error) {
	c.rep.Infof("Monitoring call %s...", callID)
	c.rep.Infof("Max wait time: %d seconds", int(maxWait.Seconds()))

	attempts := int(maxWait / c.interval)
	if attempts < 1 {
		attempts = 1
	}

	start := time.Now()
	var lastStatus model.CallStatus

	job, err := retry.Poll(ctx, retry.Budget{Attempts: attempts, Interval: c.interval},
		func(ctx context.Context) (*model.CallJob, bool, error) {
			metrics.IncPollAttempt("call_status")
			j, err := c.api.CallStatus(ctx, callID)
			if err != nil {
				// A transport hiccup is "not ready" for this attempt.
				c.log.Warn().Err(err).Str("call_id", callID).Msg("status poll failed")
				return nil, false, err
			}
			if j.Status != lastStatus {
				c.rep.StatusChange(int(time.Since(start).Seconds()), string(j.Status))
				lastStatus = j.Status
			}
			return j, j.Status.Terminal(), nil
		})
	if err != nil {
		if domain.IsCanceled(err) {
			return MonitorTimedOut, nil, err
		}
		c.rep.Warnf("Timeout after %d seconds", int(maxWait.Seconds()))
		return MonitorTimedOut, nil, nil
	}

	switch job.Status {
	case model.CallCompleted:
		c.rep.Successf("Call completed! Duration: %d seconds", job.Duration)
		return MonitorCompleted, job, nil
	case model.CallFailed:
		c.rep.Errorf("Call failed!")
		return MonitorFailed, job, nil
	case model.CallBusy:
		c.rep.Warnf("Number is busy")
		return MonitorBusy, job, nil
	default: // no-answer
		c.rep.Warnf("No answer")
		return MonitorNoAnswer, job, nil
	}
}

func (c *callUC) Transcript(ctx context.Context, conversationID string) (*model.ConversationTranscript, error) {
	c.rep.Infof("Fetching transcript for conversation %s...", conversationID)
	tr, err := c.api.Transcript(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	c.rep.Successf("Transcript retrieved!")
	c.rep.Infof("Duration: %d seconds", tr.Metadata.Duration)
	c.rep.Infof("Agent ID: %s", tr.Metadata.AgentID)
	if len(tr.Messages) == 0 {
		c.rep.Warnf("No transcript messages found")
		return tr, nil
	}
	c.rep.Infof("Transcript (%d messages):", len(tr.Messages))
	for i, m := range tr.Messages {
		c.rep.Infof("  %d. [%s] %s", i+1, m.Role, m.Message)
	}
	return tr, nil
}

func (c *callUC) Conversations(ctx context.Context) ([]model.ConversationSummary, error) {
	c.rep.Infof("Fetching conversation list...")
	conversations, err := c.api.Conversations(ctx)
	if err != nil {
		return nil, err
	}
	c.rep.Successf("Found %d conversations", len(conversations))
	return conversations, nil
}
