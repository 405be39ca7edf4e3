package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/account"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/analysis"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/errorlog"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/llm"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/llm/gemini"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/llm/openai"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/ratelimit"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/config"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/storage/db"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/storage/object"
	localstore "github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/storage/object/local"
	s3store "github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/storage/object/s3"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/telemetry"
)

var errDatabaseRequired = errors.New("DATABASE_URL is required")

// App holds the wired application dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Store   object.ObjectStore
	Limiter *ratelimit.Limiter
	Errors  *errorlog.Reporter

	CreditsService  *credits.Service
	AnalysisService *analysis.Service
	AccountService  *account.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	limiter, err := buildLimiter(cfg, sqlDB)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var creditRepo credits.Repo
	var analysisRepo analysis.Repo
	var errorStore errorlog.Store
	if sqlDB != nil {
		creditRepo = &credits.PGRepo{DB: sqlDB}
		analysisRepo = &analysis.PGRepo{DB: sqlDB}
		errorStore = &errorlog.PGStore{DB: sqlDB}
	} else {
		memCredits := credits.NewMemoryRepo()
		creditRepo = memCredits
		analysisRepo = analysis.NewMemoryRepo(memCredits)
	}

	creditSvc := credits.NewService(creditRepo)
	analysisSvc := analysis.NewService(analysisRepo, creditSvc, limiter, llmClient, store)
	accountSvc := account.NewService(analysisRepo, creditRepo)

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Store:           store,
		Limiter:         limiter,
		Errors:          errorlog.New(errorStore),
		CreditsService:  creditSvc,
		AnalysisService: analysisSvc,
		AccountService:  accountSvc,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		DB:              sqlDB,
		Limiter:         limiter,
		Errors:          app.Errors,
		AnalysisHandler: analysis.NewHandler(analysisSvc),
		CreditsHandler:  credits.NewHandler(creditSvc),
		AccountHandler:  account.NewHandler(accountSvc),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_mode", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errDatabaseRequired
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_mode", map[string]any{"reason": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLimiter(cfg config.Config, sqlDB *sql.DB) (*ratelimit.Limiter, error) {
	switch cfg.RateLimitStore {
	case "redis":
		store, err := ratelimit.NewRedisStore(cfg.RedisURL, 10*time.Minute)
		if err != nil {
			return nil, err
		}
		return ratelimit.New(store, nil), nil
	case "memory":
		return ratelimit.New(ratelimit.NewMemoryStore(), nil), nil
	default:
		if sqlDB == nil {
			return ratelimit.New(ratelimit.NewMemoryStore(), nil), nil
		}
		return ratelimit.New(&ratelimit.PGStore{DB: sqlDB}, nil), nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "OPENAI_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "GEMINI_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
