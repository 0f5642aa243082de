package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qainatsaeed/BlackBox-LLM/internal/dto"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pipeline"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/events"
)

// Processor is the pipeline surface the gateway drives.
type Processor interface {
	Process(ctx context.Context, req *dto.AskRequest) *dto.AskResponse
}

// TeamResolver fills in team rosters that envelopes may omit.
type TeamResolver interface {
	TeamFor(ctx context.Context, accountID, supervisorCode string) ([]string, error)
}

// EventPublisher emits observational events. Never on the answer path.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// receiveRetryDelay spaces out reconnect attempts after a transport error.
const receiveRetryDelay = time.Second

// Stats is a point-in-time snapshot of gateway counters.
type Stats struct {
	Processed uint64 `json:"processed"`
	Succeeded uint64 `json:"succeeded"`
	Failed    uint64 `json:"failed"`
}

// Gateway pulls envelopes off the transport, runs them through the pipeline
// on a bounded worker pool, and pushes back exactly one response per
// envelope received.
type Gateway struct {
	transport   Transport
	processor   Processor
	teams       TeamResolver   // optional
	events      EventPublisher // optional
	workers     int
	gracePeriod time.Duration
	log         logger.ILogger

	processed atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

func New(
	transport Transport,
	processor Processor,
	teams TeamResolver,
	eventPublisher EventPublisher,
	workers int,
	gracePeriod time.Duration,
	log logger.ILogger,
) *Gateway {
	if workers <= 0 {
		workers = 4
	}
	if gracePeriod <= 0 {
		gracePeriod = 15 * time.Second
	}
	return &Gateway{
		transport:   transport,
		processor:   processor,
		teams:       teams,
		events:      eventPublisher,
		workers:     workers,
		gracePeriod: gracePeriod,
		log:         log,
	}
}

// Run consumes until ctx is cancelled, then drains in-flight work within the
// grace period. Workers use their own context so cancellation stops intake
// without cutting off requests already being processed.
func (g *Gateway) Run(ctx context.Context) error {
	jobs := make(chan []byte)

	var wg sync.WaitGroup
	for i := 0; i < g.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for payload := range jobs {
				g.handle(context.Background(), payload)
			}
		}()
	}

	g.log.Info("gateway", "consuming", map[string]interface{}{
		"workers": g.workers,
	})

	// Transport errors are transient by assumption: the redis client
	// reconnects on the next call. Only cancellation stops consumption.
	for {
		payload, err := g.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break
			}
			g.log.Error("gateway", "receive failed, retrying", map[string]interface{}{
				"error": err.Error(),
			})
			select {
			case <-ctx.Done():
			case <-time.After(receiveRetryDelay):
			}
			continue
		}
		jobs <- payload
	}
	close(jobs)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		g.log.Info("gateway", "drained", nil)
	case <-time.After(g.gracePeriod):
		g.log.Warn("gateway", "grace period elapsed with work in flight", map[string]interface{}{
			"grace_period": g.gracePeriod.String(),
		})
	}
	return nil
}

// handle turns one raw envelope into one response on the transport.
func (g *Gateway) handle(ctx context.Context, payload []byte) {
	var req dto.AskRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		g.respond(ctx, &dto.AskResponse{
			RequestID: extractRequestID(payload),
			Status:    dto.StatusError,
			Error: &dto.ErrorDetail{
				Code:    pipeline.CodeBadRequest,
				Message: "malformed envelope: " + err.Error(),
			},
		})
		return
	}

	resp := g.Ask(ctx, &req)
	g.respond(ctx, resp)
}

// Ask runs one request through enrichment and the pipeline. Shared by the
// queue path and the synchronous HTTP path.
func (g *Gateway) Ask(ctx context.Context, req *dto.AskRequest) *dto.AskResponse {
	g.enrich(ctx, req)

	resp := g.processor.Process(ctx, req)

	g.processed.Add(1)
	if resp.Status == dto.StatusOK {
		g.succeeded.Add(1)
	} else {
		g.failed.Add(1)
	}

	if g.events != nil {
		event := events.NewQueryAnswered(resp.RequestID, resp.Status, resp.ModelUsed, resp.ElapsedMs)
		if err := g.events.Publish(ctx, event); err != nil {
			g.log.Warn("gateway", "event publish failed", map[string]interface{}{
				"request_id": resp.RequestID,
				"error":      err.Error(),
			})
		}
	}
	return resp
}

// enrich resolves the supervisor's team when the envelope left it out.
// Resolution failure degrades to the envelope as sent; the scope then covers
// the supervisor's own records only.
func (g *Gateway) enrich(ctx context.Context, req *dto.AskRequest) {
	if g.teams == nil || len(req.TeamEmployeeIDs) > 0 {
		return
	}
	if !strings.EqualFold(req.Role, "supervisor") {
		return
	}

	team, err := g.teams.TeamFor(ctx, req.AccountID, req.UserID)
	if err != nil {
		g.log.Warn("gateway", "team resolution failed", map[string]interface{}{
			"request_id": req.RequestID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}
	req.TeamEmployeeIDs = team
}

func (g *Gateway) respond(ctx context.Context, resp *dto.AskResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		g.log.Error("gateway", "response marshal failed", map[string]interface{}{
			"request_id": resp.RequestID,
			"error":      err.Error(),
		})
		return
	}
	if err := g.transport.Respond(ctx, payload); err != nil {
		g.log.Error("gateway", "response publish failed", map[string]interface{}{
			"request_id": resp.RequestID,
			"error":      err.Error(),
		})
	}
}

// Stats snapshots the gateway counters for the HTTP surface.
func (g *Gateway) Snapshot() Stats {
	return Stats{
		Processed: g.processed.Load(),
		Succeeded: g.succeeded.Load(),
		Failed:    g.failed.Load(),
	}
}

// extractRequestID best-effort recovers the correlation key from a payload
// that failed full decoding.
func extractRequestID(payload []byte) string {
	var probe struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	return probe.RequestID
}
