// Package pipeline runs an upload through normalization, speech recognition,
// transcript correction, optional summarization and result storage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nikhilbhutani/podcastsummarizer/internal/audio"
	"github.com/nikhilbhutani/podcastsummarizer/internal/llm"
	"github.com/nikhilbhutani/podcastsummarizer/internal/multimodal/stt"
	"github.com/nikhilbhutani/podcastsummarizer/internal/multimodal/tts"
	"github.com/nikhilbhutani/podcastsummarizer/internal/prompt"
	"github.com/nikhilbhutani/podcastsummarizer/internal/store"
	"github.com/nikhilbhutani/podcastsummarizer/pkg/chunker"
	"github.com/nikhilbhutani/podcastsummarizer/pkg/tokenizer"
)

const (
	correctionMinTokens = 256
	correctionMaxTokens = 4096

	// Transcripts above these sizes are processed in pieces.
	correctionChunkTokens = 3000
	summaryChunkTokens    = 12000
)

// Normalizer turns uploaded bytes into canonical audio on disk.
type Normalizer interface {
	Normalize(ctx context.Context, req audio.Request) (*audio.Canonical, error)
}

// ChatClient sends chat completions to a language model.
type ChatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

type modelLister interface {
	ListModels() []llm.ModelInfo
}

// Config tunes one Pipeline.
type Config struct {
	DefaultLanguage       string
	MaxUploadBytes        int64
	MaxDuration           time.Duration
	EnhanceAll            bool
	CorrectionTemperature float64
	SummaryTemperature    float64
	SummaryMaxTokens      int
	// MaxConcurrency bounds in-flight calls to hosted services across all jobs.
	MaxConcurrency int64
}

// Options selects the optional parts of a job.
type Options struct {
	Language  string
	Enhance   bool
	Summarize bool
}

// Job is one uploaded file. ID is generated when empty.
type Job struct {
	ID       string
	Filename string
	Data     []byte
	Options
}

type TranscriptResult struct {
	RawText       string `json:"raw_text"`
	CorrectedText string `json:"corrected_text"`
	LanguageCode  string `json:"language"`
}

type SummaryResult struct {
	Text string `json:"text"`
}

// Result is the outcome of Process. Summary is nil unless requested.
type Result struct {
	ProcessID  string
	Transcript TranscriptResult
	Summary    *SummaryResult
	Duration   time.Duration
	Enhanced   bool
}

type Pipeline struct {
	cfg        Config
	normalizer Normalizer
	stt        stt.STTProvider
	chat       ChatClient
	tts        tts.TTSProvider
	store      store.Store
	sem        *semaphore.Weighted
}

func New(cfg Config, normalizer Normalizer, sttProvider stt.STTProvider, chat ChatClient, ttsProvider tts.TTSProvider, st store.Store) *Pipeline {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = prompt.DefaultLanguage
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	if cfg.SummaryMaxTokens <= 0 {
		cfg.SummaryMaxTokens = 500
	}
	return &Pipeline{
		cfg:        cfg,
		normalizer: normalizer,
		stt:        sttProvider,
		chat:       chat,
		tts:        ttsProvider,
		store:      st,
		sem:        semaphore.NewWeighted(cfg.MaxConcurrency),
	}
}

// Models lists the chat models offered by the configured providers. A chat
// client that cannot enumerate its models yields none.
func (p *Pipeline) Models() []llm.ModelInfo {
	l, ok := p.chat.(modelLister)
	if !ok {
		return []llm.ModelInfo{}
	}
	models := l.ListModels()
	if models == nil {
		models = []llm.ModelInfo{}
	}
	return models
}

// ResolveLanguage validates a requested language code. Empty selects the
// default language.
func (p *Pipeline) ResolveLanguage(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return p.cfg.DefaultLanguage, nil
	}
	l, ok := prompt.Lookup(code)
	if !ok {
		return "", newError(StageReceive, KindValidation, fmt.Sprintf("unsupported language %q", truncate(code, 16)), nil)
	}
	return l.Code, nil
}

// Validate checks the parts of a job that can be checked before decoding.
func (p *Pipeline) Validate(job Job) error {
	if len(job.Data) == 0 {
		return newError(StageReceive, KindValidation, "file is required", audio.ErrEmpty)
	}
	if p.cfg.MaxUploadBytes > 0 && int64(len(job.Data)) > p.cfg.MaxUploadBytes {
		return newError(StageReceive, KindTooLarge, prompt.TooLargeMessage(job.Language, p.cfg.MaxUploadBytes), audio.ErrTooLarge)
	}
	return nil
}

// Process runs a job to completion and stores its record. The first failing
// stage aborts the job; nothing is retried.
func (p *Pipeline) Process(ctx context.Context, job Job) (*Result, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	lang, err := p.ResolveLanguage(job.Language)
	if err != nil {
		return nil, err
	}
	job.Language = lang
	if err := p.Validate(job); err != nil {
		return nil, err
	}

	log := slog.With("process_id", job.ID, "language", lang)
	start := time.Now()

	canonical, err := p.normalizer.Normalize(ctx, audio.Request{
		ID:       job.ID,
		Filename: job.Filename,
		Data:     job.Data,
		Enhance:  job.Enhance || p.cfg.EnhanceAll,
	})
	if err != nil {
		return nil, p.normalizeError(lang, err)
	}
	defer func() {
		if err := canonical.Cleanup(); err != nil {
			log.Warn("failed to remove temporary audio", "error", err)
		}
	}()
	log.Info("audio normalized",
		"format", canonical.Format,
		"duration", canonical.Duration,
		"enhanced", canonical.Enhanced,
	)

	raw, err := p.transcribe(ctx, canonical.Path, lang)
	if err != nil {
		return nil, err
	}

	corrected, err := p.correct(ctx, raw, lang)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ProcessID: job.ID,
		Transcript: TranscriptResult{
			RawText:       raw,
			CorrectedText: corrected,
			LanguageCode:  lang,
		},
		Duration: canonical.Duration,
		Enhanced: canonical.Enhanced,
	}

	if job.Summarize {
		summary, err := p.Summarize(ctx, corrected, lang)
		if err != nil {
			return nil, err
		}
		res.Summary = &summary
	}

	rec := store.Record{
		ProcessID:  job.ID,
		Transcript: corrected,
		Language:   lang,
	}
	if res.Summary != nil {
		rec.Summary = res.Summary.Text
	}
	if err := p.store.Put(ctx, rec); err != nil {
		return nil, newError(StageStore, KindStorage, "failed to store result", err)
	}

	log.Info("job completed", "elapsed", time.Since(start), "summarized", res.Summary != nil)
	return res, nil
}

func (p *Pipeline) normalizeError(lang string, err error) error {
	switch {
	case errors.Is(err, audio.ErrTooLarge):
		return newError(StageNormalize, KindTooLarge, prompt.TooLargeMessage(lang, p.cfg.MaxUploadBytes), err)
	case errors.Is(err, audio.ErrTooLong):
		return newError(StageNormalize, KindValidation, prompt.TooLongMessage(lang, p.cfg.MaxDuration), err)
	case errors.Is(err, audio.ErrEmpty):
		return newError(StageNormalize, KindValidation, "file is required", err)
	case errors.Is(err, audio.ErrStorage):
		return newError(StageNormalize, KindStorage, "failed to store audio", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newError(StageNormalize, KindInternal, "request canceled", err)
	default:
		return newError(StageNormalize, KindConversion, "audio could not be decoded", err)
	}
}

func (p *Pipeline) transcribe(ctx context.Context, path, lang string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", upstreamError(StageTranscribe, "transcription", err)
	}
	defer p.sem.Release(1)

	start := time.Now()
	resp, err := p.stt.Transcribe(ctx, stt.TranscriptionRequest{
		FilePath: path,
		Language: lang,
		Prompt:   prompt.TranscriptionPrompt(lang),
	})
	if err != nil {
		slog.Error("transcription failed", "stage", StageTranscribe, "provider", p.stt.Name(), "error", err)
		return "", upstreamError(StageTranscribe, "transcription", err)
	}
	slog.Debug("transcribed", "provider", p.stt.Name(), "chars", len(resp.Text), "latency", time.Since(start))
	return strings.TrimSpace(resp.Text), nil
}

// correct fixes grammar and punctuation. Long transcripts are corrected
// chunk by chunk, concurrently, and joined back in order.
func (p *Pipeline) correct(ctx context.Context, raw, lang string) (string, error) {
	chunks := chunker.Split(raw, correctionChunkTokens)
	if len(chunks) == 0 {
		return "", nil
	}

	out := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			resp, err := p.complete(gctx, StageCorrect, llm.ChatRequest{
				Messages: []llm.Message{
					{Role: llm.RoleSystem, Content: prompt.CorrectionPrompt(lang)},
					{Role: llm.RoleUser, Content: chunk},
				},
				Temperature: p.cfg.CorrectionTemperature,
				MaxTokens:   tokenizer.OutputBudget(chunk, correctionMinTokens, correctionMaxTokens),
			})
			if err != nil {
				return err
			}
			out[i] = strings.TrimSpace(resp.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", upstreamError(StageCorrect, "correction", err)
	}
	if len(chunks) > 1 {
		slog.Debug("transcript corrected in chunks", "chunks", len(chunks))
	}
	return strings.Join(out, " "), nil
}

// Summarize condenses text in the given language. Empty text is rejected.
// Text too long for one request is summarized per chunk first, then the
// partial summaries are summarized together.
func (p *Pipeline) Summarize(ctx context.Context, text, lang string) (SummaryResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SummaryResult{}, newError(StageSummarize, KindValidation, "text is required", nil)
	}
	lang, err := p.ResolveLanguage(lang)
	if err != nil {
		return SummaryResult{}, err
	}

	if chunks := chunker.Split(text, summaryChunkTokens); len(chunks) > 1 {
		partials := make([]string, len(chunks))
		g, gctx := errgroup.WithContext(ctx)
		for i, chunk := range chunks {
			g.Go(func() error {
				s, err := p.summarizeOnce(gctx, chunk, lang)
				partials[i] = s
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return SummaryResult{}, upstreamError(StageSummarize, "summarization", err)
		}
		slog.Debug("summarized in chunks", "chunks", len(chunks))
		text = strings.Join(partials, "\n\n")
	}

	summary, err := p.summarizeOnce(ctx, text, lang)
	if err != nil {
		return SummaryResult{}, upstreamError(StageSummarize, "summarization", err)
	}
	return SummaryResult{Text: summary}, nil
}

func (p *Pipeline) summarizeOnce(ctx context.Context, text, lang string) (string, error) {
	resp, err := p.complete(ctx, StageSummarize, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompt.SummaryPrompt(lang)},
			{Role: llm.RoleUser, Content: text},
		},
		Temperature: p.cfg.SummaryTemperature,
		MaxTokens:   p.cfg.SummaryMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

func (p *Pipeline) complete(ctx context.Context, stage Stage, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	resp, err := p.chat.Chat(ctx, req)
	if err != nil {
		slog.Error("chat completion failed", "stage", stage, "error", err)
		return nil, err
	}
	slog.Info("chat completion",
		"stage", stage,
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}

// Synthesize converts text to speech. There is no local length cap.
func (p *Pipeline) Synthesize(ctx context.Context, text, voice string) (*tts.SynthesisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newError(StageSynthesize, KindValidation, "text is required", nil)
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, upstreamError(StageSynthesize, "speech synthesis", err)
	}
	defer p.sem.Release(1)

	res, err := p.tts.Synthesize(ctx, tts.SynthesisRequest{Input: text, Voice: voice})
	if err != nil {
		slog.Error("speech synthesis failed", "stage", StageSynthesize, "provider", p.tts.Name(), "error", err)
		return nil, upstreamError(StageSynthesize, "speech synthesis", err)
	}
	return res, nil
}

// Lookup returns the stored record for a process id.
func (p *Pipeline) Lookup(ctx context.Context, id string) (store.Record, error) {
	rec, err := p.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Record{}, newError(StageLookup, KindNotFound, "process ID not found", err)
	}
	if err != nil {
		return store.Record{}, newError(StageLookup, KindStorage, "failed to load result", err)
	}
	return rec, nil
}

// Ready pings the result store.
func (p *Pipeline) Ready(ctx context.Context) error {
	return p.store.Ping(ctx)
}

// StoreName is the configured result store backend.
func (p *Pipeline) StoreName() string { return p.store.Name() }

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
