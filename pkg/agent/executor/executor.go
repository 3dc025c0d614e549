package executor

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/agent/events"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
	"github.com/fpt/notice-cli/pkg/message"
)

// State aliases the loop states so callers need only this package.
type State = domain.AgentState

const (
	Thinking     = domain.StateThinking
	ActingSearch = domain.StateActingSearch
	Responding   = domain.StateResponding
	Done         = domain.StateDone
	Failed       = domain.StateFailed
)

// Policy bounds a run.
type Policy struct {
	// MaxSteps counts tool calls and recoveries. A final answer ends the run.
	MaxSteps int
	// RecoverParseErrors re-prompts on unparsable output instead of failing.
	RecoverParseErrors bool
	// ForceFinalAnswer makes one extra tool-free request once the budget is spent.
	ForceFinalAnswer bool
}

// DefaultPolicy allows one search and one answer.
func DefaultPolicy() Policy {
	return Policy{MaxSteps: 2, RecoverParseErrors: true, ForceFinalAnswer: true}
}

// Config is the immutable configuration of an Executor.
type Config struct {
	Model    domain.ToolCallingLLM
	Tools    domain.ToolManager
	Template Template
	Policy   Policy
}

// Executor drives the bounded think/act loop. It keeps no per-run state and
// may serve concurrent runs.
type Executor struct {
	cfg    Config
	logger *pkgLogger.Logger
}

// New validates cfg and returns an Executor.
func New(cfg Config) (*Executor, error) {
	if cfg.Model == nil {
		return nil, errors.New("executor: model is required")
	}
	if cfg.Tools == nil {
		return nil, errors.New("executor: tool manager is required")
	}
	if len(cfg.Template.Slots) == 0 {
		cfg.Template = DefaultTemplate()
	}
	if cfg.Policy.MaxSteps <= 0 {
		return nil, errors.Errorf("executor: max steps must be positive, got %d", cfg.Policy.MaxSteps)
	}
	return &Executor{cfg: cfg, logger: pkgLogger.NewComponentLogger("executor")}, nil
}

// Config returns a copy of the executor configuration.
func (e *Executor) Config() Config {
	cfg := e.cfg
	cfg.Template.Slots = append([]Slot(nil), e.cfg.Template.Slots...)
	return cfg
}

type runOptions struct {
	handlers []events.EventHandler
}

// RunOption customizes a single run.
type RunOption func(*runOptions)

// WithEventHandler observes the run's events.
func WithEventHandler(h events.EventHandler) RunOption {
	return func(o *runOptions) {
		o.handlers = append(o.handlers, h)
	}
}

// Run drafts a reply to input. transcript is read for context only.
// Every failure is returned as *domain.AgentRuntimeError.
func (e *Executor) Run(ctx context.Context, input string, transcript []domain.TranscriptEntry, opts ...RunOption) (string, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := &run{
		cfg:        e.cfg,
		log:        e.logger,
		input:      input,
		transcript: append([]domain.TranscriptEntry(nil), transcript...),
		emitter:    events.NewSimpleEventEmitter(o.handlers...),
		state:      Thinking,
		tools:      e.cfg.Tools.GetTools(),
	}
	return r.execute(ctx)
}

// run is the mutable state of one Run call.
type run struct {
	cfg        Config
	log        *pkgLogger.Logger
	input      string
	transcript []domain.TranscriptEntry
	emitter    *events.SimpleEventEmitter
	tools      map[message.ToolName]message.Tool

	state        State
	steps        int
	scratchpad   []message.Message
	searchUsed   bool
	searchBarren bool
}

func (r *run) execute(ctx context.Context) (string, error) {
	r.log.DebugWithIntention(pkgLogger.IntentionState, "Run started",
		"model", r.cfg.Model.ModelID(), "max_steps", r.cfg.Policy.MaxSteps, "transcript", len(r.transcript))

	for r.steps < r.cfg.Policy.MaxSteps {
		if err := ctx.Err(); err != nil {
			return r.fail(err)
		}
		r.transition(Thinking)

		choice := domain.NewToolChoiceAuto()
		if r.searchUsed {
			choice = domain.NewToolChoiceNone()
		}

		decision, err := r.think(ctx, r.scratchpad, choice)
		if err != nil {
			return r.fail(err)
		}

		switch d := decision.(type) {
		case FinalAnswer:
			return r.respond(d.Text, false)

		case ToolCallRequest:
			r.steps++
			if r.searchUsed {
				r.refuseSecondSearch(d)
				continue
			}
			r.searchUsed = true
			r.transition(ActingSearch)
			if err := r.search(ctx, d); err != nil {
				return r.fail(err)
			}

		case Unparsable:
			r.steps++
			if !r.cfg.Policy.RecoverParseErrors {
				return r.fail(&domain.ParseRecoveryError{Raw: d.Raw, Reason: d.Reason})
			}
			r.recover(d)
		}
	}

	return r.exhausted(ctx)
}

// think makes one model call and classifies the reply.
func (r *run) think(ctx context.Context, scratchpad []message.Message, choice domain.ToolChoice) (Decision, error) {
	msgs := r.cfg.Template.Render(r.transcript, r.input, scratchpad)
	resp, err := r.cfg.Model.ChatWithToolChoice(ctx, msgs, choice)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var malformed *domain.MalformedGenerationError
		if errors.As(err, &malformed) {
			return Unparsable{Raw: malformed.Raw, Reason: "provider rejected a malformed tool call"}, nil
		}
		return nil, errors.Wrap(err, "model call failed")
	}

	r.annotateUsage(resp)
	return Classify(resp, r.tools), nil
}

func (r *run) annotateUsage(resp message.Message) {
	provider, ok := r.cfg.Model.(domain.TokenUsageProvider)
	if !ok || resp == nil {
		return
	}
	if usage, ok := provider.LastTokenUsage(); ok {
		resp.SetTokenUsage(usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
		r.log.DebugWithIntention(pkgLogger.IntentionDebug, "Token usage",
			"input", usage.InputTokens, "output", usage.OutputTokens, "total", usage.TotalTokens)
	}
}

// search executes the single permitted tool call. Tool failures are folded
// into the scratchpad; only cancellation aborts the run.
func (r *run) search(ctx context.Context, req ToolCallRequest) error {
	call := message.NewToolCallMessageWithID(req.CallID, req.Tool, req.Args)
	r.scratchpad = append(r.scratchpad, call)

	r.emitter.EmitEvent(events.EventTypeToolCallStart, events.ToolCallStartData{
		ToolName:  string(req.Tool),
		Arguments: req.Args,
		CallID:    call.ID(),
	}, r.stepInfo())

	start := time.Now()
	res, err := r.cfg.Tools.CallTool(ctx, req.Tool, req.Args)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	var result *message.ToolResultMessage
	switch {
	case err != nil:
		r.searchBarren = true
		r.log.WarnWithIntention(pkgLogger.IntentionWarning, "Search failed, continuing without a source", "error", err)
		result = message.NewToolResultMessage(call.ID(), "", searchFailedInstruction(err.Error()))
	case res.Error != "":
		r.searchBarren = true
		r.log.WarnWithIntention(pkgLogger.IntentionWarning, "Search returned an error, continuing without a source", "error", res.Error)
		result = message.NewToolResultMessage(call.ID(), "", searchFailedInstruction(res.Error))
	default:
		text := res.Text
		if record, perr := domain.ParseSearchRecord(res.Text); perr == nil && record.Empty() {
			r.searchBarren = true
			text += "\n\n" + searchEmptyNote()
		}
		result = message.NewToolResultMessage(call.ID(), text, "")
	}
	r.scratchpad = append(r.scratchpad, result)

	r.emitter.EmitEvent(events.EventTypeToolResult, events.ToolResultData{
		ToolName: string(req.Tool),
		CallID:   call.ID(),
		Content:  result.Content(),
		IsError:  result.Error != "",
		Duration: time.Since(start),
	}, r.stepInfo())
	return nil
}

// refuseSecondSearch answers a repeated tool call without executing it.
func (r *run) refuseSecondSearch(req ToolCallRequest) {
	r.log.DebugWithIntention(pkgLogger.IntentionRecover, "Refused a second search", "query", req.Query)
	call := message.NewToolCallMessageWithID(req.CallID, req.Tool, req.Args)
	r.scratchpad = append(r.scratchpad,
		call,
		message.NewToolResultMessage(call.ID(), "", secondSearchInstruction()),
	)
	r.emitter.EmitEvent(events.EventTypeRecovery, events.RecoveryData{
		Raw:    req.Query,
		Reason: domain.ErrSearchAlreadyUsed.Error(),
	}, r.stepInfo())
}

// recover appends the bad output and a correction to the scratchpad.
func (r *run) recover(d Unparsable) {
	r.log.InfoWithIntention(pkgLogger.IntentionRecover, "Recovering from unparsable output", "reason", d.Reason)
	if raw := strings.TrimSpace(d.Raw); raw != "" {
		r.scratchpad = append(r.scratchpad, message.NewAssistantMessage(raw))
	}
	r.scratchpad = append(r.scratchpad, message.NewUserMessage(recoveryInstruction(d.Reason, r.searchUsed)))
	r.emitter.EmitEvent(events.EventTypeRecovery, events.RecoveryData{Raw: d.Raw, Reason: d.Reason}, r.stepInfo())
}

// exhausted makes the one forced final-answer request, if allowed.
func (r *run) exhausted(ctx context.Context) (string, error) {
	if !r.cfg.Policy.ForceFinalAnswer {
		return r.fail(domain.ErrStepBudgetExhausted)
	}
	if err := ctx.Err(); err != nil {
		return r.fail(err)
	}

	r.log.InfoWithIntention(pkgLogger.IntentionRecover, "Step budget spent, requesting the final letter")
	r.transition(Thinking)
	scratchpad := append(append([]message.Message(nil), r.scratchpad...), message.NewUserMessage(forceFinalInstruction()))
	decision, err := r.think(ctx, scratchpad, domain.NewToolChoiceNone())
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(err)
		}
		return r.fail(errors.Wrapf(domain.ErrStepBudgetExhausted, "forced answer failed: %v", err))
	}
	if d, ok := decision.(FinalAnswer); ok {
		return r.respond(d.Text, true)
	}
	return r.fail(domain.ErrStepBudgetExhausted)
}

func (r *run) respond(text string, forced bool) (string, error) {
	r.transition(Responding)
	if r.searchBarren && !strings.Contains(strings.ToLower(text), strings.ToLower(FallbackCitation)) {
		text += fallbackLegalBasis()
	}
	r.emitter.EmitEvent(events.EventTypeResponse, events.ResponseData{Text: text, Forced: forced}, r.stepInfo())
	r.transition(Done)
	r.log.InfoWithIntention(pkgLogger.IntentionDraft, "Notice drafted",
		"steps", r.steps, "searched", r.searchUsed, "forced", forced)
	return text, nil
}

func (r *run) fail(cause error) (string, error) {
	err := &domain.AgentRuntimeError{State: r.state, Steps: r.steps, Err: cause}
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		r.log.InfoWithIntention(pkgLogger.IntentionCancel, "Run cancelled", "state", r.state)
	} else {
		r.log.ErrorWithIntention(pkgLogger.IntentionError, "Run failed", "state", r.state, "error", cause)
	}
	r.emitter.EmitEvent(events.EventTypeError, events.ErrorData{Error: err, Context: string(r.state)}, r.stepInfo())
	r.transition(Failed)
	return "", err
}

func (r *run) transition(to State) {
	if r.state == to || r.state.Terminal() {
		return
	}
	from := r.state
	r.state = to
	r.log.DebugWithIntention(pkgLogger.IntentionState, "State change", "from", from, "to", to, "steps", r.steps)
	r.emitter.EmitEvent(events.EventTypeStateChange, events.StateChangeData{From: from, To: to}, r.stepInfo())
}

func (r *run) stepInfo() *events.StepInfo {
	return &events.StepInfo{Used: r.steps, Maximum: r.cfg.Policy.MaxSteps}
}
