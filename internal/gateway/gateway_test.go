package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qainatsaeed/BlackBox-LLM/internal/dto"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pipeline"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
)

type fakeTransport struct {
	in  chan []byte
	out chan []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:  make(chan []byte, 16),
		out: make(chan []byte, 16),
	}
}

func (t *fakeTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload, ok := <-t.in:
		if !ok {
			return nil, context.Canceled
		}
		return payload, nil
	}
}

func (t *fakeTransport) Respond(ctx context.Context, payload []byte) error {
	t.out <- payload
	return nil
}

func (t *fakeTransport) Close() error { return nil }

type echoProcessor struct {
	lastReq *dto.AskRequest
}

func (p *echoProcessor) Process(ctx context.Context, req *dto.AskRequest) *dto.AskResponse {
	p.lastReq = req
	return &dto.AskResponse{
		RequestID: req.RequestID,
		Status:    dto.StatusOK,
		Answer:    "echo: " + req.Query,
	}
}

type fixedTeams struct {
	codes []string
}

func (f fixedTeams) TeamFor(ctx context.Context, accountID, supervisorCode string) ([]string, error) {
	return f.codes, nil
}

func startGateway(t *testing.T, g *Gateway) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = g.Run(ctx)
		close(done)
	}()
	return func() {
		stop()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("gateway did not stop")
		}
	}
}

func readResponse(t *testing.T, transport *fakeTransport) *dto.AskResponse {
	t.Helper()
	select {
	case payload := <-transport.out:
		var resp dto.AskResponse
		require.NoError(t, json.Unmarshal(payload, &resp))
		return &resp
	case <-time.After(5 * time.Second):
		t.Fatal("no response on transport")
		return nil
	}
}

// flakyTransport fails its first receive with a transient error, then
// behaves like the fake transport.
type flakyTransport struct {
	*fakeTransport
	failed bool
	err    error
}

func (t *flakyTransport) Receive(ctx context.Context) ([]byte, error) {
	if !t.failed {
		t.failed = true
		return nil, t.err
	}
	return t.fakeTransport.Receive(ctx)
}

func TestRunSurvivesTransientReceiveError(t *testing.T) {
	transport := &flakyTransport{
		fakeTransport: newFakeTransport(),
		err:           errors.New("blpop hrask.ask.queue: connection reset"),
	}
	g := New(transport, &echoProcessor{}, nil, nil, 1, time.Second, logger.NewNopLogger())

	payload, _ := json.Marshal(dto.AskRequest{
		RequestID: "req-retry",
		Query:     "still there?",
		UserID:    "emp001",
		Role:      "employee",
		AccountID: "acct1",
	})
	transport.in <- payload

	stop := startGateway(t, g)
	defer stop()

	resp := readResponse(t, transport.fakeTransport)
	assert.Equal(t, "req-retry", resp.RequestID)
	assert.Equal(t, dto.StatusOK, resp.Status)
}

func TestRunProcessesEnvelopes(t *testing.T) {
	transport := newFakeTransport()
	g := New(transport, &echoProcessor{}, nil, nil, 2, time.Second, logger.NewNopLogger())
	stop := startGateway(t, g)
	defer stop()

	envelope, _ := json.Marshal(&dto.AskRequest{
		RequestID: "req-1",
		Query:     "hello",
		UserID:    "emp001",
		Role:      "employee",
	})
	transport.in <- envelope

	resp := readResponse(t, transport)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, dto.StatusOK, resp.Status)
	assert.Equal(t, "echo: hello", resp.Answer)
}

func TestMalformedEnvelopeStillGetsResponse(t *testing.T) {
	transport := newFakeTransport()
	g := New(transport, &echoProcessor{}, nil, nil, 1, time.Second, logger.NewNopLogger())
	stop := startGateway(t, g)
	defer stop()

	transport.in <- []byte("{not json at all")

	resp := readResponse(t, transport)
	assert.Equal(t, dto.StatusError, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, pipeline.CodeBadRequest, resp.Error.Code)
	assert.Empty(t, resp.RequestID)
}

func TestMalformedEnvelopeKeepsRecoverableRequestID(t *testing.T) {
	transport := newFakeTransport()
	g := New(transport, &echoProcessor{}, nil, nil, 1, time.Second, logger.NewNopLogger())
	stop := startGateway(t, g)
	defer stop()

	// Valid JSON, wrong field type: the full decode fails but the
	// correlation key is still recoverable.
	transport.in <- []byte(`{"request_id":"req-7","top_k":"five"}`)

	resp := readResponse(t, transport)
	assert.Equal(t, dto.StatusError, resp.Status)
	assert.Equal(t, "req-7", resp.RequestID)
}

func TestEveryEnvelopeGetsExactlyOneResponse(t *testing.T) {
	transport := newFakeTransport()
	g := New(transport, &echoProcessor{}, nil, nil, 4, time.Second, logger.NewNopLogger())
	stop := startGateway(t, g)
	defer stop()

	const n = 10
	for i := 0; i < n; i++ {
		envelope, _ := json.Marshal(&dto.AskRequest{
			RequestID: "req",
			Query:     "q",
			UserID:    "u",
			Role:      "employee",
		})
		transport.in <- envelope
	}

	for i := 0; i < n; i++ {
		readResponse(t, transport)
	}
	select {
	case extra := <-transport.out:
		t.Fatalf("unexpected extra response: %s", extra)
	case <-time.After(100 * time.Millisecond):
	}

	stats := g.Snapshot()
	assert.Equal(t, uint64(n), stats.Processed)
	assert.Equal(t, uint64(n), stats.Succeeded)
}

func TestAskEnrichesSupervisorTeam(t *testing.T) {
	processor := &echoProcessor{}
	g := New(newFakeTransport(), processor, fixedTeams{codes: []string{"emp002", "emp003"}}, nil, 1, time.Second, logger.NewNopLogger())

	req := &dto.AskRequest{
		RequestID: "req-1",
		Query:     "team hours",
		UserID:    "sup1",
		Role:      "supervisor",
		AccountID: "acct1",
	}
	g.Ask(context.Background(), req)

	require.NotNil(t, processor.lastReq)
	assert.Equal(t, []string{"emp002", "emp003"}, processor.lastReq.TeamEmployeeIDs)
}

func TestAskLeavesExplicitTeamAlone(t *testing.T) {
	processor := &echoProcessor{}
	g := New(newFakeTransport(), processor, fixedTeams{codes: []string{"emp009"}}, nil, 1, time.Second, logger.NewNopLogger())

	req := &dto.AskRequest{
		RequestID:       "req-1",
		Query:           "team hours",
		UserID:          "sup1",
		Role:            "supervisor",
		AccountID:       "acct1",
		TeamEmployeeIDs: []string{"emp002"},
	}
	g.Ask(context.Background(), req)

	assert.Equal(t, []string{"emp002"}, processor.lastReq.TeamEmployeeIDs)
}

func TestAskDoesNotEnrichEmployees(t *testing.T) {
	processor := &echoProcessor{}
	g := New(newFakeTransport(), processor, fixedTeams{codes: []string{"emp009"}}, nil, 1, time.Second, logger.NewNopLogger())

	req := &dto.AskRequest{
		RequestID: "req-1",
		Query:     "my hours",
		UserID:    "emp001",
		Role:      "employee",
		AccountID: "acct1",
	}
	g.Ask(context.Background(), req)

	assert.Empty(t, processor.lastReq.TeamEmployeeIDs)
}
