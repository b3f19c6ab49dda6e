// File: internal/usecase/flow_uc_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"outreach-call-harness/internal/domain"
	"outreach-call-harness/internal/domain/model"
	"outreach-call-harness/internal/report"
)

func newFlowUC(t *testing.T, api *fakeBackend, prompter *fakePrompter, opts FlowOptions) (*flowUC, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	rep := report.New(&out)
	logger := testLogger(t)
	calls := NewCallUseCase(api, rep, logger, time.Millisecond)
	chat := NewChatUseCase(api, rep, logger)
	if opts.PhoneNumber == "" {
		opts.PhoneNumber = "+15550100"
	}
	if opts.PostCallWait == 0 {
		opts.PostCallWait = time.Millisecond
	}
	if opts.MaxWait == 0 {
		opts.MaxWait = 50 * time.Millisecond
	}
	if opts.ChatMessage == "" {
		opts.ChatMessage = "hello"
	}
	return NewFlowUseCase(api, calls, chat, prompter, opts, rep, logger), &out
}

func scriptChat(api *fakeBackend) {
	api.sessionFn = func(context.Context) (*model.ChatSession, error) {
		return &model.ChatSession{UserID: "U1", SessionID: "S1"}, nil
	}
	api.messageFn = func(context.Context, string, string, string) (string, error) {
		return "Sure, I can help with that.", nil
	}
}

func TestRunAbortsWhenHealthCheckFails(t *testing.T) {
	api := &fakeBackend{
		healthFn: func(context.Context) error {
			return domain.Ef(domain.KindProtocol, "health", "unexpected status 500")
		},
	}
	uc, out := newFlowUC(t, api, &fakePrompter{confirm: true}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeFullFlow); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if api.requests != 1 {
		t.Fatalf("expected no requests past the health check, got %d", api.requests)
	}
	if !strings.Contains(out.String(), "Health check failed") {
		t.Errorf("missing health failure report:\n%s", out.String())
	}
}

func TestRunSkipCalling(t *testing.T) {
	api := &fakeBackend{}
	scriptChat(api)
	uc, out := newFlowUC(t, api, &fakePrompter{}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeSkipCalling); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, out.String())
	}
	// health + session + message, and nothing call-related
	if api.requests != 3 {
		t.Fatalf("requests = %d", api.requests)
	}
	if !strings.Contains(out.String(), "no calls made") {
		t.Errorf("missing skip-calling confirmation:\n%s", out.String())
	}
}

func TestRunSkipCallingSessionFailureExitsNonZero(t *testing.T) {
	api := &fakeBackend{
		sessionFn: func(context.Context) (*model.ChatSession, error) {
			return nil, errors.New("boom")
		},
	}
	uc, _ := newFlowUC(t, api, &fakePrompter{}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeSkipCalling); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
}

func TestRunDryRunFetchesLatestTranscript(t *testing.T) {
	var fetched string
	api := &fakeBackend{
		listFn: func(context.Context) ([]model.ConversationSummary, error) {
			return []model.ConversationSummary{
				{ConversationID: "newest"},
				{ConversationID: "older"},
			}, nil
		},
		scriptFn: func(_ context.Context, id string) (*model.ConversationTranscript, error) {
			fetched = id
			return &model.ConversationTranscript{
				Messages: []model.TranscriptMessage{{Role: "agent", Message: "Hello"}},
			}, nil
		},
	}
	uc, _ := newFlowUC(t, api, &fakePrompter{}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeDryRun); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if fetched != "newest" {
		t.Fatalf("fetched transcript for %q, want the most recent conversation", fetched)
	}
}

func TestRunDryRunNoConversationsIsClean(t *testing.T) {
	api := &fakeBackend{
		listFn: func(context.Context) ([]model.ConversationSummary, error) { return nil, nil },
	}
	uc, out := newFlowUC(t, api, &fakePrompter{}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeDryRun); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "No conversations found") {
		t.Errorf("missing empty-list warning:\n%s", out.String())
	}
}

func TestRunDryRunTranscriptFailureExitsNonZero(t *testing.T) {
	api := &fakeBackend{
		listFn: func(context.Context) ([]model.ConversationSummary, error) {
			return []model.ConversationSummary{{ConversationID: "V1"}}, nil
		},
		scriptFn: func(context.Context, string) (*model.ConversationTranscript, error) {
			return nil, domain.Ef(domain.KindProtocol, "transcript", "unexpected status 500")
		},
	}
	uc, _ := newFlowUC(t, api, &fakePrompter{}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeDryRun); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
}

func TestRunFullFlowDeclinedConfirmation(t *testing.T) {
	api := &fakeBackend{}
	uc, out := newFlowUC(t, api, &fakePrompter{confirm: false}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeFullFlow); code != 0 {
		t.Fatalf("declining the call prompt is not a failure, exit code = %d", code)
	}
	// only the health check went out
	if api.requests != 1 {
		t.Fatalf("requests = %d", api.requests)
	}
	if !strings.Contains(out.String(), "Test cancelled") {
		t.Errorf("missing cancellation notice:\n%s", out.String())
	}
}

func TestRunFullFlowEndToEnd(t *testing.T) {
	api := &fakeBackend{
		initiateFn: func(context.Context, string) (*model.CallJob, error) {
			return &model.CallJob{CallID: "C1", ConversationID: "V1", Status: model.CallQueued}, nil
		},
		scriptFn: func(_ context.Context, id string) (*model.ConversationTranscript, error) {
			if id != "V1" {
				t.Errorf("transcript fetched for %q", id)
			}
			return &model.ConversationTranscript{
				Messages: []model.TranscriptMessage{
					{Role: "agent", Message: "Hello"},
					{Role: "user", Message: "Hi"},
					{Role: "agent", Message: "Bye"},
				},
				Metadata: model.TranscriptMetadata{Duration: 42},
			}, nil
		},
	}
	scriptChat(api)
	uc, out := newFlowUC(t, api, &fakePrompter{confirm: true}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeFullFlow); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "Call → Transcript") {
		t.Errorf("missing success summary:\n%s", out.String())
	}
}

func TestRunFullFlowWatchMonitorsToCompletion(t *testing.T) {
	statusPolls := 0
	api := &fakeBackend{
		initiateFn: func(context.Context, string) (*model.CallJob, error) {
			return &model.CallJob{CallID: "C1", ConversationID: "V1", Status: model.CallQueued}, nil
		},
		statusFn: func(context.Context, string) (*model.CallJob, error) {
			statusPolls++
			if statusPolls < 3 {
				return &model.CallJob{CallID: "C1", Status: model.CallInProgress}, nil
			}
			return &model.CallJob{CallID: "C1", Status: model.CallCompleted, Duration: 42}, nil
		},
		scriptFn: func(context.Context, string) (*model.ConversationTranscript, error) {
			return &model.ConversationTranscript{}, nil
		},
	}
	scriptChat(api)
	uc, out := newFlowUC(t, api, &fakePrompter{confirm: true}, FlowOptions{Watch: true})

	if code := uc.Run(context.Background(), ModeFullFlow); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, out.String())
	}
	if statusPolls != 3 {
		t.Fatalf("status polls = %d", statusPolls)
	}
}

func TestRunFullFlowWatchFailedCallExitsNonZero(t *testing.T) {
	api := &fakeBackend{
		initiateFn: func(context.Context, string) (*model.CallJob, error) {
			return &model.CallJob{CallID: "C1", ConversationID: "V1", Status: model.CallQueued}, nil
		},
		statusFn: func(context.Context, string) (*model.CallJob, error) {
			return &model.CallJob{CallID: "C1", Status: model.CallFailed}, nil
		},
	}
	uc, _ := newFlowUC(t, api, &fakePrompter{confirm: true}, FlowOptions{Watch: true})

	if code := uc.Run(context.Background(), ModeFullFlow); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
}

func TestRunFullFlowTranscriptNotReadyIsSoft(t *testing.T) {
	api := &fakeBackend{
		initiateFn: func(context.Context, string) (*model.CallJob, error) {
			return &model.CallJob{CallID: "C1", ConversationID: "V1", Status: model.CallQueued}, nil
		},
		scriptFn: func(context.Context, string) (*model.ConversationTranscript, error) {
			return nil, domain.Ef(domain.KindProtocol, "transcript", "unexpected status 404")
		},
	}
	scriptChat(api)
	uc, out := newFlowUC(t, api, &fakePrompter{confirm: true}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeFullFlow); code != 0 {
		t.Fatalf("a late transcript must not fail the run, exit code = %d", code)
	}
	if !strings.Contains(out.String(), "still be processing") {
		t.Errorf("missing processing hint:\n%s", out.String())
	}
}

func TestRunFullFlowEmptyChatReplyIsSoft(t *testing.T) {
	api := &fakeBackend{
		initiateFn: func(context.Context, string) (*model.CallJob, error) {
			return &model.CallJob{CallID: "C1", ConversationID: "V1", Status: model.CallQueued}, nil
		},
		scriptFn: func(context.Context, string) (*model.ConversationTranscript, error) {
			return &model.ConversationTranscript{}, nil
		},
		sessionFn: func(context.Context) (*model.ChatSession, error) {
			return &model.ChatSession{UserID: "U1", SessionID: "S1"}, nil
		},
		messageFn: func(context.Context, string, string, string) (string, error) {
			return "", nil
		},
	}
	uc, out := newFlowUC(t, api, &fakePrompter{confirm: true}, FlowOptions{})

	if code := uc.Run(context.Background(), ModeFullFlow); code != 0 {
		t.Fatalf("empty reply must not fail the run, exit code = %d", code)
	}
	if !strings.Contains(out.String(), "No reply text found") {
		t.Errorf("missing empty-reply warning:\n%s", out.String())
	}
}

func TestSelectMode(t *testing.T) {
	cases := []struct {
		skipCalling, actuallyCall bool
		want                      Mode
	}{
		{true, false, ModeSkipCalling},
		{true, true, ModeSkipCalling},
		{false, false, ModeDryRun},
		{false, true, ModeFullFlow},
	}
	for _, tc := range cases {
		if got := SelectMode(tc.skipCalling, tc.actuallyCall); got != tc.want {
			t.Errorf("SelectMode(%t, %t) = %v, want %v", tc.skipCalling, tc.actuallyCall, got, tc.want)
		}
	}
}
