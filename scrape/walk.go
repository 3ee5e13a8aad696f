package scrape

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/fwojciec/probdoc"
	"github.com/google/uuid"
)

// WalkRequest selects what a catalog walk processes.
type WalkRequest struct {
	// CatalogURL is fetched first when set. Otherwise the walk uses the
	// topics from the last FetchCatalog call.
	CatalogURL string

	// Selected lists topic IDs to walk; empty walks every topic.
	Selected []string

	// Transform enhances each record before export when set.
	Transform *probdoc.TransformOptions
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

func (t ProgressType) String() string {
	switch t {
	case ProgressStarted:
		return "started"
	case ProgressCompleted:
		return "completed"
	case ProgressSkipped:
		return "skipped"
	case ProgressFailed:
		return "failed"
	case ProgressFinished:
		return "finished"
	}
	return "unknown"
}

// ProgressEvent reports progress during a walk. One event follows every item.
type ProgressEvent struct {
	Type      ProgressType
	RunID     string
	Completed int
	Total     int
	Topic     string
	Title     string
	URL       string
	Path      string
	Generated bool
	Error     error
}

// ProgressFunc is a callback for reporting walk progress.
type ProgressFunc func(event ProgressEvent)

// ItemError ties a failure to the link that caused it.
type ItemError struct {
	Topic string
	URL   string
	Err   error
}

// WalkResult accumulates the outcome of a walk. Completed counts every item
// processed, whatever its outcome.
type WalkResult struct {
	RunID     string
	Total     int
	Completed int
	Exported  int
	Skipped   int
	Generated int
	Errors    []ItemError
	Cancelled bool
}

// Failed returns the number of items that ended in an error.
func (r WalkResult) Failed() int {
	return len(r.Errors)
}

// itemOutcome is what processing a single link produced.
type itemOutcome struct {
	topic        probdoc.Topic
	topicIndex   int
	problemIndex int
	link         probdoc.ProblemLink
	title        string
	status       probdoc.ItemStatus
	export       *probdoc.ExportResult
	generated    bool
	err          error
}

// add folds one outcome into the result.
func (r WalkResult) add(o itemOutcome) WalkResult {
	r.Completed++
	switch o.status {
	case probdoc.ItemExported:
		r.Exported++
		if o.generated {
			r.Generated++
		}
	case probdoc.ItemSkipped:
		r.Skipped++
	case probdoc.ItemFailed:
		r.Errors = append(r.Errors, ItemError{Topic: o.topic.Name, URL: o.link.URL, Err: o.err})
	}
	return r
}

// RunCatalogWalk processes every link of the selected topics in catalog
// order: fetch, parse, optionally transform, then export. Per-item failures
// are logged and counted; they never stop the walk. Cancel, Close or a
// cancelled context stop it before the next item and the result reports
// Cancelled. The session returns to Ready when the walk ends.
func (s *Session) RunCatalogWalk(ctx context.Context, req WalkRequest, progress ProgressFunc) (*WalkResult, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	f, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer s.end()

	topics, catalogURL, err := s.walkTopics(ctx, f, req)
	if err != nil {
		return nil, err
	}

	aiEnabled := req.Transform != nil && req.Transform.AIEnabled()
	limiter := s.Limiter
	if limiter == nil {
		pace := DefaultPace
		if aiEnabled {
			pace = DefaultAIPace
		}
		limiter = NewDomainLimiter(pace)
	}

	result := WalkResult{RunID: uuid.New().String(), Total: probdoc.CountLinks(topics)}
	log := s.logger().With("run", result.RunID)
	run := s.startRun(ctx, result, catalogURL, req)

	progress(ProgressEvent{Type: ProgressStarted, RunID: result.RunID, Total: result.Total})
	log.Info("walk started", "catalog", catalogURL, "topics", len(topics), "total", result.Total)

walk:
	for ti, topic := range topics {
		for pi, link := range topic.Links {
			if s.cancelled.Load() || ctx.Err() != nil {
				result.Cancelled = true
				break walk
			}
			if err := limiter.Wait(ctx, host(link.URL)); err != nil {
				result.Cancelled = true
				break walk
			}

			o := s.processItem(ctx, f, topic, ti, link, pi, req.Transform)
			if o.err != nil && ctx.Err() != nil && isContextErr(o.err) {
				result.Cancelled = true
				break walk
			}
			result = result.add(o)

			ev := ProgressEvent{
				RunID:     result.RunID,
				Completed: result.Completed,
				Total:     result.Total,
				Topic:     topic.Name,
				Title:     o.title,
				URL:       link.URL,
				Generated: o.generated,
				Error:     o.err,
			}
			switch o.status {
			case probdoc.ItemExported:
				ev.Type = ProgressCompleted
				ev.Path = o.export.Path
			case probdoc.ItemSkipped:
				ev.Type = ProgressSkipped
				log.Warn("item skipped", "url", link.URL, "topic", topic.Name)
			default:
				ev.Type = ProgressFailed
				log.Warn("item failed", "url", link.URL, "topic", topic.Name, "error", o.err)
			}
			s.recordItem(ctx, run, o)
			progress(ev)
		}
	}

	s.finishRun(run, result)
	progress(ProgressEvent{Type: ProgressFinished, RunID: result.RunID, Completed: result.Completed, Total: result.Total})
	log.Info("walk finished",
		"completed", result.Completed,
		"exported", result.Exported,
		"skipped", result.Skipped,
		"failed", result.Failed(),
		"cancelled", result.Cancelled)

	return &result, nil
}

// begin moves a Ready session to Running.
func (s *Session) begin() (probdoc.Fetcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateUninitialized:
		return nil, probdoc.Errorf(probdoc.ESTATE, "session is not initialized")
	case StateRunning:
		return nil, probdoc.Errorf(probdoc.ESTATE, "session is already running a catalog walk")
	case StateClosed:
		return nil, probdoc.Errorf(probdoc.ESTATE, "session is closed")
	}
	s.state = StateRunning
	s.cancelled.Store(false)
	return s.fetcher, nil
}

// end returns a running session to Ready unless it was closed meanwhile.
func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		s.state = StateReady
	}
}

func (s *Session) walkTopics(ctx context.Context, f probdoc.Fetcher, req WalkRequest) ([]probdoc.Topic, string, error) {
	var topics []probdoc.Topic
	catalogURL := req.CatalogURL
	if catalogURL != "" {
		var err error
		if topics, err = s.fetchCatalog(ctx, f, catalogURL); err != nil {
			return nil, "", err
		}
		s.mu.Lock()
		s.topics = topics
		s.catalog = catalogURL
		s.mu.Unlock()
	} else {
		s.mu.Lock()
		topics = s.topics
		catalogURL = s.catalog
		s.mu.Unlock()
		if topics == nil {
			return nil, "", probdoc.Errorf(probdoc.ESTATE, "no catalog loaded")
		}
	}

	selected, err := probdoc.SelectTopics(topics, req.Selected)
	if err != nil {
		return nil, "", err
	}
	return selected, catalogURL, nil
}

func (s *Session) processItem(ctx context.Context, f probdoc.Fetcher, topic probdoc.Topic, ti int, link probdoc.ProblemLink, pi int, opts *probdoc.TransformOptions) itemOutcome {
	o := itemOutcome{topic: topic, topicIndex: ti, problemIndex: pi, link: link, title: link.Title}

	s.op.Lock()
	rec, err := s.fetchProblem(ctx, f, link.URL)
	if err != nil {
		s.op.Unlock()
		o.status, o.err = probdoc.ItemFailed, err
		return o
	}
	if rec == nil {
		s.op.Unlock()
		o.status = probdoc.ItemSkipped
		return o
	}
	o.title = rec.Title

	var content probdoc.Content = &probdoc.Original{ProblemRecord: rec}
	if opts != nil {
		enhanced, res, err := s.Transformer.Enhance(ctx, rec, *opts)
		if err != nil {
			s.op.Unlock()
			o.status, o.err = probdoc.ItemFailed, err
			return o
		}
		if !res.Success {
			s.logger().Debug("transform fell back to template", "url", link.URL, "code", res.Code, "error", res.Error)
		}
		content = enhanced
		o.generated = enhanced.Generated
	}
	s.op.Unlock()

	target := probdoc.ExportTarget{
		TopicName:    topic.Name,
		TopicIndex:   probdoc.Index(ti),
		ProblemIndex: probdoc.Index(pi),
	}
	res, err := s.Exporter.Export(ctx, content, target)
	if err != nil {
		o.status, o.err = probdoc.ItemFailed, err
		return o
	}
	o.status, o.export = probdoc.ItemExported, res
	return o
}

func (s *Session) startRun(ctx context.Context, result WalkResult, catalogURL string, req WalkRequest) *probdoc.Run {
	if s.Runs == nil {
		return nil
	}
	run := &probdoc.Run{
		ID:         result.RunID,
		CatalogURL: catalogURL,
		Total:      result.Total,
	}
	if req.Transform != nil {
		run.Template = req.Transform.Template.String()
		run.UseAI = req.Transform.AIEnabled()
	}
	if err := s.Runs.CreateRun(ctx, run); err != nil {
		s.logger().Warn("failed to record run", "run", run.ID, "error", err)
		return nil
	}
	return run
}

func (s *Session) recordItem(ctx context.Context, run *probdoc.Run, o itemOutcome) {
	if run == nil {
		return
	}
	item := &probdoc.RunItem{
		RunID:        run.ID,
		TopicID:      o.topic.ID,
		TopicIndex:   o.topicIndex,
		ProblemIndex: o.problemIndex,
		Title:        o.title,
		URL:          o.link.URL,
		Status:       o.status,
		Generated:    o.generated,
	}
	if o.export != nil {
		item.Path = o.export.Path
		item.ContentHash = o.export.Hash
	}
	if o.err != nil {
		item.Error = probdoc.ErrorMessage(o.err)
	}
	if err := s.Runs.CreateRunItem(ctx, item); err != nil {
		s.logger().Warn("failed to record run item", "run", run.ID, "url", item.URL, "error", err)
	}
}

// finishRun uses a fresh context so a cancelled walk still stores its counters.
func (s *Session) finishRun(run *probdoc.Run, result WalkResult) {
	if run == nil {
		return
	}
	run.Completed = result.Completed
	run.Exported = result.Exported
	run.Failed = result.Failed()
	run.Cancelled = result.Cancelled

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Runs.FinishRun(ctx, run); err != nil {
		s.logger().Warn("failed to finish run", "run", run.ID, "error", err)
	}
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
