// Package dispatch pulls unprocessed posts, classifies them and runs the
// matching executor, recording each outcome back into the post store.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"solmentions/internal/executors"
	"solmentions/internal/intent"
	"solmentions/internal/models"
	"solmentions/internal/store"
)

// ActionResult reports what happened to one post within a batch. Every post
// evaluated in a batch appears in the report; nothing is silently dropped.
type ActionResult struct {
	Original models.Post      `json:"original"`
	Status   executors.Status `json:"status"`
	Action   intent.Kind      `json:"action,omitempty"`
	TxID     string           `json:"txid,omitempty"`
	DBStatus string           `json:"dbStatus"`
	Error    string           `json:"error,omitempty"`
}

// BatchReport is the summary returned to the trigger collaborator.
type BatchReport struct {
	Message        string         `json:"message"`
	ProcessedCount int            `json:"processed_count"`
	Actions        []ActionResult `json:"actions"`
}

// Config holds dispatcher tunables
type Config struct {
	BatchLimit int
	// PostTimeout bounds each post's executor call so one stuck external
	// call cannot starve the rest of the batch.
	PostTimeout time.Duration
}

// LoadConfig loads dispatcher configuration from environment variables
func LoadConfig() Config {
	cfg := Config{
		BatchLimit:  100,
		PostTimeout: 2 * time.Minute,
	}
	if v := os.Getenv("DISPATCH_BATCH_LIMIT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.BatchLimit)
	}
	if v := os.Getenv("DISPATCH_POST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PostTimeout = d
		}
	}
	return cfg
}

// Dispatcher wires the post store, the extractor and one executor per intent
// kind. Posts within a batch are handled strictly sequentially; executors
// mutate shared external state (wallet nonce, rate-limited APIs) that does
// not tolerate concurrent use from a single identity.
type Dispatcher struct {
	posts     *store.PostStore
	extractor *intent.Extractor
	executors map[intent.Kind]executors.Executor
	config    Config
}

// NewDispatcher creates a dispatcher. Executors are registered by kind;
// registering two executors for one kind is a programming error.
func NewDispatcher(posts *store.PostStore, extractor *intent.Extractor, config Config, execs ...executors.Executor) *Dispatcher {
	byKind := make(map[intent.Kind]executors.Executor, len(execs))
	for _, ex := range execs {
		if _, dup := byKind[ex.Kind()]; dup {
			panic(fmt.Sprintf("duplicate executor for kind %s", ex.Kind()))
		}
		byKind[ex.Kind()] = ex
	}
	return &Dispatcher{
		posts:     posts,
		extractor: extractor,
		executors: byKind,
		config:    config,
	}
}

// ProcessBatch runs one dispatch cycle. Per-post failures are converted into
// ActionResults and never abort the batch; only a failure to fetch the
// unprocessed set itself returns an error. Multiple cycles may run
// concurrently: the store's conditional MarkPerformed is what prevents a post
// from acting twice.
func (d *Dispatcher) ProcessBatch(ctx context.Context) (*BatchReport, error) {
	posts, err := d.posts.FetchUnprocessed(d.config.BatchLimit)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		Message:        "batch complete",
		ProcessedCount: len(posts),
		Actions:        make([]ActionResult, 0, len(posts)),
	}

	for i := range posts {
		select {
		case <-ctx.Done():
			report.Message = "batch interrupted"
			return report, nil
		default:
		}
		report.Actions = append(report.Actions, d.processPost(ctx, &posts[i]))
	}

	return report, nil
}

// processPost evaluates one post end to end.
func (d *Dispatcher) processPost(ctx context.Context, post *models.Post) ActionResult {
	result := ActionResult{Original: *post, DBStatus: "unchanged"}

	// Timeline noise that mentions nobody is closed out for good.
	if !post.IsReply && !post.IsDirectMention {
		if _, err := d.posts.MarkNotApplicable(post.ID, "not a reply or mention"); err != nil {
			log.Printf("Failed to mark post %s not applicable: %v", post.ID, err)
		} else {
			result.DBStatus = "not_applicable"
		}
		result.Status = executors.StatusSkipped
		return result
	}

	in := d.extractor.Extract(post.Content)

	// "No actionable intent" is not "handled": the post stays unprocessed so
	// a later pass with better extraction may still pick it up.
	if in.Kind == intent.KindNone {
		result.Status = executors.StatusSkipped
		return result
	}
	result.Action = in.Kind

	exec, ok := d.executors[in.Kind]
	if !ok {
		result.Status = executors.StatusSkipped
		result.Error = fmt.Sprintf("no executor registered for %s", in.Kind)
		return result
	}

	postCtx := ctx
	if d.config.PostTimeout > 0 {
		var cancel context.CancelFunc
		postCtx, cancel = context.WithTimeout(ctx, d.config.PostTimeout)
		defer cancel()
	}

	res := exec.Execute(postCtx, post, in)
	result.Status = res.Status
	result.TxID = res.TxID

	switch res.Status {
	case executors.StatusSuccess:
		detail := res.Detail
		if detail == "" {
			detail = res.TxID
		}
		marked, err := d.posts.MarkPerformed(post.ID, string(in.Kind), detail)
		if err != nil {
			// The side effect ran but the outcome is not recorded; the next
			// batch will retry and the executor's own idempotency has to
			// carry it.
			result.DBStatus = "mark_failed"
			result.Error = err.Error()
			log.Printf("Post %s: executor succeeded but marking failed: %v", post.ID, err)
			return result
		}
		if !marked {
			// Another dispatch cycle got here first. The side effect cannot
			// be reversed; log and accept the double-accounting.
			result.DBStatus = "race_lost"
			log.Printf("WARNING: post %s was already marked performed by a concurrent batch", post.ID)
			return result
		}
		result.DBStatus = "marked"

	case executors.StatusError:
		result.Error = res.Detail
		result.DBStatus = "retry_eligible"
		if err := d.posts.RecordAttempt(post.ID, res.Detail); err != nil {
			log.Printf("Failed to record attempt for post %s: %v", post.ID, err)
		}

	case executors.StatusSkipped:
		result.Error = res.Detail
	}

	return result
}
