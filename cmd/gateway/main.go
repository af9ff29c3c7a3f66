package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	api "github.com/quizgate/quizgate/internal/api/http"
	"github.com/quizgate/quizgate/internal/config"
	"github.com/quizgate/quizgate/internal/db"
	"github.com/quizgate/quizgate/internal/generate"
	"github.com/quizgate/quizgate/internal/kv"
	"github.com/quizgate/quizgate/internal/progress"
	"github.com/quizgate/quizgate/internal/quiz"
	"github.com/quizgate/quizgate/internal/storage"
	syncx "github.com/quizgate/quizgate/internal/sync"
	"github.com/quizgate/quizgate/internal/topics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	store := quiz.NewSQLStore(dbh)
	prefs := kv.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)

	bundle, err := storage.NewBundleStore(cfg.BundleDir)
	if err != nil {
		log.Fatal("bundle store", zap.Error(err))
	}
	source := quiz.NewSource(store, bundle)

	// --- Generators ---
	var gen generate.Generator = generate.NewMockGenerator()
	if cfg.Generator == "openai" && cfg.OpenAIAPIKey != "" {
		gen = generate.NewOpenAIGenerator(generate.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
	}

	// --- Services ---
	progressSvc := progress.NewService(store, events, log)
	topicsSvc := topics.NewService(gen, store, events, topics.Options{
		NumModules: cfg.ModulesPerTopic,
		PerModule:  cfg.QuestionsPerModule,
		WriteDelay: cfg.QuestionWriteDelay,
	}, log)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	uid := cfg.DefaultUserID

	r.Get("/modules", api.ListModulesHandler(progressSvc, uid, cfg.StaticLevels))
	r.Get("/questions", api.ListQuestionsHandler(source))

	r.Post("/attempts", api.CreateAttemptHandler(store, topicsSvc, events, uid, log))
	r.Get("/attempts", api.ListAttemptsHandler(store, uid))

	r.Route("/topics", func(tr chi.Router) {
		tr.Post("/", api.CreateTopicHandler(topicsSvc, uid))
		tr.Get("/", api.ListTopicsHandler(topicsSvc, uid))
		tr.Get("/{topicID}", api.GetTopicHandler(topicsSvc))
		tr.Delete("/{topicID}", api.DeleteTopicHandler(topicsSvc, uid))
	})

	r.Post("/progress/reset", api.ResetProgressHandler(progressSvc, uid))

	r.Route("/prefs", func(pr chi.Router) {
		pr.Get("/{key}", api.GetPrefHandler(prefs, uid))
		pr.Put("/{key}", api.PutPrefHandler(prefs, uid))
		pr.Delete("/{key}", api.DeletePrefHandler(prefs, uid))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("db", cfg.DBDriver))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}
