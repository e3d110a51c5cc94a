// Command server starts the adaptive interview engine HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/ai/openrouter"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/ai/stubllm"
	embcache "github.com/fairyhunter13/ai-interviewer/internal/adapter/embedding/cache"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/embedding/hashed"
	embopenai "github.com/fairyhunter13/ai-interviewer/internal/adapter/embedding/openai"
	eventsrp "github.com/fairyhunter13/ai-interviewer/internal/adapter/events/redpanda"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/speech/kokoro"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/speech/whisper"
	"github.com/fairyhunter13/ai-interviewer/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/ai-interviewer/internal/app"
	"github.com/fairyhunter13/ai-interviewer/internal/config"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/session"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("tracing setup failed", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	candidateRepo := postgres.NewCandidateRepo(pool)
	cvRepo := postgres.NewCVAnalysisRepo(pool)
	questionRepo := postgres.NewQuestionRepo(pool)
	followUpRepo := postgres.NewFollowUpRepo(pool)
	interviewRepo := postgres.NewInterviewRepo(pool)
	answerRepo := postgres.NewAnswerRepo(pool)
	evaluationRepo := postgres.NewEvaluationRepo(pool)

	// AI providers. Without an API key outside production the deterministic
	// stub keeps the whole flow runnable offline.
	var (
		llm domain.LLMProvider
		emb domain.EmbeddingService
	)
	if cfg.StubAI() {
		slog.Warn("no LLM API key configured, using deterministic stub provider")
		llm = stubllm.New()
		emb = hashed.New()
	} else {
		llm = openrouter.New(cfg)
		emb = embopenai.New(cfg)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() { _ = rdb.Close() }()
	if cfg.EmbedCacheEnable {
		emb = embcache.New(emb, rdb, cfg.EmbedCacheTTL)
	}

	vectorIndex := qdrant.New(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection, cfg.VectorSize)
	if err := vectorIndex.EnsureCollection(ctx); err != nil {
		// Planning degrades to repository exemplars when the index is down.
		slog.Warn("qdrant collection setup failed", slog.Any("error", err))
	}

	stt := whisper.New(cfg.STTURL, cfg.STTTimeout)
	tts := kokoro.New(cfg.TTSURL, cfg.TTSTimeout)

	var events domain.EventPublisher
	if cfg.EventsEnable {
		producer, err := eventsrp.NewProducer(ctx, cfg.KafkaBrokers, cfg.KafkaTopicEvents)
		if err != nil {
			slog.Warn("event producer setup failed, lifecycle events disabled", slog.Any("error", err))
		} else {
			defer producer.Close()
			events = producer
		}
	}

	intake := usecase.NewIntakeService(candidateRepo, cvRepo, llm, emb)
	planner := usecase.Planner{
		CVAnalyses: cvRepo,
		Questions:  questionRepo,
		Interviews: interviewRepo,
		LLM:        llm,
		Embeddings: emb,
		Vectors:    vectorIndex,
		Events:     events,
	}
	evaluator := usecase.NewEvaluator(llm, emb)
	summarizer := usecase.Summarizer{
		Interviews:  interviewRepo,
		Questions:   questionRepo,
		FollowUps:   followUpRepo,
		Answers:     answerRepo,
		Evaluations: evaluationRepo,
		LLM:         llm,
	}

	srv := &httpserver.Server{
		Cfg:        cfg,
		Intake:     intake,
		Planner:    planner,
		Summarizer: summarizer,
		Interviews: interviewRepo,
		CVAnalyses: cvRepo,
		Sessions:   session.NewRegistry(),
		SessionDeps: session.Deps{
			Interviews:    interviewRepo,
			Questions:     questionRepo,
			FollowUps:     followUpRepo,
			Answers:       answerRepo,
			Evaluations:   evaluationRepo,
			LLM:           llm,
			STT:           stt,
			TTS:           tts,
			Events:        events,
			Evaluator:     evaluator,
			Summarizer:    summarizer,
			TTSVoice:      cfg.TTSVoice,
			TTSSpeed:      cfg.TTSSpeed,
			STTLanguage:   cfg.STTLanguage,
			InboundBuffer: cfg.SessionInboundBuffer,
			IdleTimeout:   cfg.SessionIdleTimeout,
		},
		DBCheck:     app.DBCheck(pool),
		RedisCheck:  app.RedisCheck(rdb),
		QdrantCheck: app.QdrantCheck(cfg.QdrantURL),
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.BuildRouter(cfg, srv),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", slog.Int("port", cfg.Port), slog.String("env", cfg.AppEnv))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
