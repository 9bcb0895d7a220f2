package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/events"
)

var errEmptyResponse = errors.New("generation returned no text")

// Config tunes the orchestrator.
type Config struct {
	Persona      string
	Params       GenerationParams
	MaxAttempts  int
	RetryBackoff time.Duration
	DefaultYear  int
}

// DefaultConfig returns the settings the assistant ships with.
func DefaultConfig() Config {
	return Config{
		Persona:      DefaultPersona,
		Params:       DefaultGenerationParams(),
		MaxAttempts:  3,
		RetryBackoff: 5 * time.Second,
		DefaultYear:  2024,
	}
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithSleeper replaces the wait between rate-limited attempts.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = s }
}

// Orchestrator runs one conversational turn: onboarding, prompt assembly,
// generation with retry, and post-processing. It keeps no per-conversation
// state; the caller passes the state in and stores the one returned.
type Orchestrator struct {
	gateway   DataGateway
	generator GenerationClient
	assembler *ContextAssembler
	cfg       Config
	sleep     Sleeper
	logger    *zap.Logger
}

// New creates an Orchestrator.
func New(gateway DataGateway, generator GenerationClient, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:   gateway,
		generator: generator,
		cfg:       cfg,
		sleep:     SleepContext,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg.MaxAttempts < 1 {
		o.cfg.MaxAttempts = 1
	}
	if o.cfg.DefaultYear == 0 {
		o.cfg.DefaultYear = time.Now().Year()
	}
	o.assembler = NewContextAssembler(cfg.Persona, gateway, NewIntentDetector(o.cfg.DefaultYear), o.logger)
	return o
}

// Process handles one user message and returns the reply with the next state.
func (o *Orchestrator) Process(ctx context.Context, in Input) Result {
	state := in.State
	if state == "" {
		state = StateStart
	}

	switch state {
	case StateStart:
		return o.start(in)
	case StateAwaitingName:
		return o.awaitName(in)
	case StateActive:
		return o.answer(ctx, in)
	default:
		o.logger.Warn("unknown conversation state", zap.String("state", string(state)))
		return Result{Response: msgInternalError, Success: false, State: StateActive}
	}
}

func (o *Orchestrator) start(in Input) Result {
	name := strings.TrimSpace(in.UserName)
	if name == "" {
		return Result{
			Response:     msgAskName,
			Success:      true,
			State:        StateAwaitingName,
			AwaitingName: true,
		}
	}
	return Result{
		Response: fmt.Sprintf(msgGreetingFormat, name, dataSummary(in.Screen)),
		Success:  true,
		State:    StateActive,
		UserName: name,
	}
}

func (o *Orchestrator) awaitName(in Input) Result {
	name, ok := ExtractName(in.Message)
	if !ok {
		return Result{
			Response:     msgNameNotCaught,
			Success:      true,
			State:        StateAwaitingName,
			AwaitingName: true,
		}
	}
	o.logger.Info("user introduced", zap.String("name", name))
	return Result{
		Response: fmt.Sprintf(msgWelcomeFormat, name, dataSummary(in.Screen)),
		Success:  true,
		State:    StateActive,
		UserName: name,
	}
}

func (o *Orchestrator) answer(ctx context.Context, in Input) Result {
	name := in.UserName
	renamed := false
	if ContainsSelfIntroduction(in.Message) {
		if extracted, ok := ExtractName(in.Message); ok && extracted != name {
			o.logger.Info("user name corrected", zap.String("from", name), zap.String("to", extracted))
			name, renamed = extracted, true
		}
	}

	prompt := o.assembler.Build(ctx, PromptRequest{
		Message:  in.Message,
		Screen:   in.Screen,
		History:  in.History,
		UserName: name,
	})

	text, err := o.generate(ctx, prompt)
	if err == nil {
		text = Sanitize(text)
		if text == "" {
			err = errEmptyResponse
		}
	}

	var res Result
	if err != nil {
		res = o.failure(err, in.Screen)
	} else {
		res = Result{Response: text, Success: true, State: StateActive}
	}
	if renamed {
		res.UserName = name
	}
	return res
}

// generate calls the generation client, waiting RetryBackoff and trying again
// only when the failure is a rate limit.
func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		text, err := o.generator.Generate(ctx, prompt, o.cfg.Params)
		if err == nil {
			return text, nil
		}
		lastErr = err

		code := Classify(err)
		o.logger.Warn("generation attempt failed",
			zap.Int("attempt", attempt),
			zap.String("code", string(code)),
			zap.Error(err),
		)
		if code != ErrRateLimit || attempt == o.cfg.MaxAttempts {
			break
		}
		if err := o.sleep(ctx, o.cfg.RetryBackoff); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (o *Orchestrator) failure(err error, screen *ScreenContext) Result {
	code := Classify(err)
	if code == ErrUnknown && (screen == nil || len(screen.Events) == 0) {
		code = ErrNoContext
	}
	if code == ErrUnknown || code == ErrNoContext {
		o.logger.Error("turn failed", zap.String("code", string(code)), zap.Error(err))
	}
	return Result{
		Response: code.UserMessage(),
		Success:  false,
		State:    StateActive,
		Error:    code,
	}
}

// UpdateStatus validates status and applies it to the event. Invalid values
// are rejected before the gateway is called.
func (o *Orchestrator) UpdateStatus(ctx context.Context, id, status string) StatusResult {
	st, err := events.ParseStatus(status)
	if err != nil {
		return StatusResult{Success: false, EventID: id, Reason: invalidStatusReason(), err: err}
	}

	change, err := o.gateway.UpdateStatus(ctx, id, st)
	if err != nil {
		o.logger.Warn("status update failed", zap.String("event_id", id), zap.Error(err))
		return StatusResult{Success: false, EventID: id, Status: st, Reason: err.Error(), err: err}
	}
	o.logger.Info("status updated",
		zap.String("event_id", id),
		zap.String("from", string(change.Previous)),
		zap.String("to", string(change.Current)),
	)
	return StatusResult{Success: true, EventID: id, Status: change.Current, Previous: change.Previous}
}

func invalidStatusReason() string {
	valid := make([]string, len(events.Statuses))
	for i, s := range events.Statuses {
		valid[i] = string(s)
	}
	return "Status inválido. Use: " + strings.Join(valid, ", ")
}
