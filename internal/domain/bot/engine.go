package bot

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"instareply/internal/domain/conversation"
	"instareply/internal/domain/knowledge"
	"instareply/internal/infrastructure/metrics"
	"instareply/internal/worker"
)

// PlaygroundUserID is the fixed synthetic identity used by the operator
// playground. Its turns persist history so the transcript stays inspectable.
const PlaygroundUserID = "playground_user"

// Generator produces a reply for a composed prompt.
type Generator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// Sender dispatches an outbound message to a recipient.
type Sender interface {
	SendMessage(ctx context.Context, recipientID, text string) error
}

// ContextRetriever looks up knowledge-base chunks for a query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) ([]knowledge.Chunk, error)
}

// PersonaProvider supplies the operator-edited system persona.
type PersonaProvider interface {
	SystemPrompt(ctx context.Context) string
}

// LeadExtractor records candidate leads found in message text.
type LeadExtractor interface {
	Extract(ctx context.Context, userID, text string) error
}

// Result is the terminal outcome of a completed turn. A paused turn yields
// nil instead.
type Result struct {
	ReplyText       string        `json:"replyText"`
	RelevantContext string        `json:"relevantContext"`
	Duration        time.Duration `json:"duration"`
}

// Engine runs the bot-response pipeline for one inbound message.
type Engine struct {
	store        conversation.Store
	persona      PersonaProvider
	retriever    ContextRetriever
	generator    Generator
	sender       Sender
	extractor    LeadExtractor
	tasks        worker.Submitter
	prompts      *PromptBuilder
	historyLimit int
	log          zerolog.Logger
	now          func() time.Time
}

// Config wires the engine's collaborators.
type Config struct {
	Store        conversation.Store
	Persona      PersonaProvider
	Retriever    ContextRetriever
	Generator    Generator
	Sender       Sender
	Extractor    LeadExtractor
	Tasks        worker.Submitter
	Prompts      *PromptBuilder
	HistoryLimit int
}

// NewEngine builds the pipeline.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = 10
	}
	return &Engine{
		store:        cfg.Store,
		persona:      cfg.Persona,
		retriever:    cfg.Retriever,
		generator:    cfg.Generator,
		sender:       cfg.Sender,
		extractor:    cfg.Extractor,
		tasks:        cfg.Tasks,
		prompts:      cfg.Prompts,
		historyLimit: limit,
		log:          log.With().Str("component", "bot-engine").Logger(),
		now:          time.Now,
	}
}

// Respond runs one turn of the pipeline. Simulated turns skip the pause
// check and outbound dispatch; only the playground identity persists history
// when simulated. A paused conversation records the inbound message and
// returns (nil, nil). Generation and dispatch failures propagate to the
// caller, which must log without crashing the request.
func (e *Engine) Respond(ctx context.Context, userID, userMessage string, simulated bool) (*Result, error) {
	if !simulated {
		paused, err := e.store.IsPaused(ctx, userID)
		if err != nil {
			// Absence of a row means not paused; a read failure is treated
			// the same so a state outage cannot silence the bot.
			e.log.Warn().Err(err).Str("user_id", userID).Msg("pause check failed, continuing")
		}
		if paused {
			e.log.Info().Str("user_id", userID).Msg("conversation paused, human takeover active")
			if err := e.store.AppendMessage(ctx, userID, conversation.RoleUser, userMessage); err != nil {
				e.log.Error().Err(err).Str("user_id", userID).Msg("record inbound message while paused")
			}
			metrics.TurnsTotal.WithLabelValues("paused").Inc()
			return nil, nil
		}
	}

	systemPrompt := e.persona.SystemPrompt(ctx)

	persist := !simulated || userID == PlaygroundUserID

	var history []conversation.Message
	if persist {
		var err error
		history, err = e.store.RecentHistory(ctx, userID, e.historyLimit)
		if err != nil {
			e.log.Warn().Err(err).Str("user_id", userID).Msg("history fetch failed, continuing without history")
			history = nil
		}
	}

	contextText := e.retrieveContext(ctx, userID, userMessage)

	prompt := e.prompts.Build(systemPrompt, history, contextText, userMessage, e.now())

	if persist {
		if err := e.store.AppendMessage(ctx, userID, conversation.RoleUser, userMessage); err != nil {
			e.log.Error().Err(err).Str("user_id", userID).Msg("persist user message")
		}
		e.submitLeadExtraction(userID, userMessage)
	}

	start := time.Now()
	reply, err := e.generator.GenerateReply(ctx, prompt)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("generation_error").Inc()
		return nil, err
	}
	duration := time.Since(start)
	metrics.GenerationDuration.Observe(duration.Seconds())
	e.log.Info().Str("user_id", userID).Bool("simulated", simulated).Dur("duration", duration).Msg("reply generated")

	if !simulated {
		if err := e.sender.SendMessage(ctx, userID, reply); err != nil {
			metrics.TurnsTotal.WithLabelValues("delivery_error").Inc()
			return nil, err
		}
		metrics.SendsTotal.Inc()
	}

	if persist {
		if err := e.store.AppendMessage(ctx, userID, conversation.RoleAssistant, reply); err != nil {
			e.log.Error().Err(err).Str("user_id", userID).Msg("persist assistant reply")
		}
	}

	metrics.TurnsTotal.WithLabelValues("completed").Inc()
	return &Result{
		ReplyText:       reply,
		RelevantContext: contextText,
		Duration:        duration,
	}, nil
}

// retrieveContext embeds the message and searches the knowledge base.
// Retrieval failures degrade to an empty context, never aborting the turn.
func (e *Engine) retrieveContext(ctx context.Context, userID, userMessage string) string {
	chunks, err := e.retriever.Retrieve(ctx, userMessage)
	if err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("retrieval failed, continuing without context")
		return ""
	}
	metrics.RetrievedChunks.Observe(float64(len(chunks)))
	if len(chunks) == 0 {
		e.log.Debug().Str("user_id", userID).Msg("no relevant context found")
		return ""
	}
	e.log.Debug().Str("user_id", userID).Int("chunks", len(chunks)).Msg("context chunks found")
	return knowledge.JoinChunks(chunks)
}

func (e *Engine) submitLeadExtraction(userID, text string) {
	e.tasks.Submit(worker.Task{
		Name: "lead-extraction",
		Run: func(ctx context.Context) error {
			return e.extractor.Extract(ctx, userID, text)
		},
	})
}
