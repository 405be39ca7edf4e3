package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/llm"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/ratelimit"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/metrics"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/storage/object"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/telemetry"
)

// DefaultGenerateTimeout bounds one provider call.
const DefaultGenerateTimeout = 90 * time.Second

// Service runs the paid analysis pipeline: validate, throttle, check funds,
// generate, then charge and persist atomically. The generation call happens
// before the debit, so a provider failure never costs the user credits.
type Service struct {
	Repo    Repo
	Credits *credits.Service
	Limiter *ratelimit.Limiter
	LLM     llm.Client
	Objects object.ObjectStore

	GenerateTimeout time.Duration
	now             func() time.Time
}

// NewService constructs a Service. objects may be nil when image retention is
// disabled.
func NewService(repo Repo, cr *credits.Service, limiter *ratelimit.Limiter, client llm.Client, objects object.ObjectStore) *Service {
	return &Service{
		Repo:            repo,
		Credits:         cr,
		Limiter:         limiter,
		LLM:             client,
		Objects:         objects,
		GenerateTimeout: DefaultGenerateTimeout,
		now:             time.Now,
	}
}

// Run executes one analysis request for the user. The returned ratelimit
// result is valid whenever the request got past validation, so handlers can
// always set throttle headers.
func (s *Service) Run(ctx context.Context, userID string, kind Kind, req *Request) (Analysis, ratelimit.Result, error) {
	spec, ok := specFor(kind)
	if !ok {
		return Analysis{}, ratelimit.Result{}, ErrUnknownKind
	}

	if issues := spec.Validate(req); len(issues) > 0 {
		return Analysis{}, ratelimit.Result{}, &ValidationError{Fields: issues}
	}

	limit := s.Limiter.Check(ctx, ratelimit.UserSubject(userID), ratelimit.Analysis.For(spec.Endpoint()))
	if !limit.Allowed {
		metrics.IncRateLimited()
		return Analysis{}, limit, &RateLimitedError{Result: limit}
	}

	price := spec.Price(req)
	available, err := s.Credits.Balance(ctx, userID)
	if err != nil {
		return Analysis{}, limit, fmt.Errorf("check balance: %w", err)
	}
	if available < price {
		return Analysis{}, limit, &credits.InsufficientCreditsError{Required: price, Available: available}
	}

	metrics.IncAnalysisStarted()
	started := s.now()

	raw, err := s.generate(ctx, spec, req)
	if err != nil {
		metrics.IncAnalysisFailed()
		metrics.IncGenerationFailed()
		return Analysis{}, limit, err
	}

	a := Analysis{
		ID:             uuid.NewString(),
		UserID:         userID,
		Kind:           kind,
		Input:          inputRecord(spec, req),
		SelectedTopics: req.SelectedTopics,
		CreditsUsed:    price,
		Result:         ParseResult(raw),
		CreatedAt:      s.now().UTC(),
	}

	if key := s.storeImage(ctx, userID, a.ID, req); key != "" {
		a.Input["imageKey"] = key
	}

	debit := credits.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      -price,
		Type:        credits.TxDeduction,
		Description: spec.Title,
		ReferenceID: &a.ID,
		CreatedAt:   a.CreatedAt,
	}
	if err := s.Repo.CreateFunded(ctx, a, debit); err != nil {
		metrics.IncAnalysisFailed()
		var insufficient *credits.InsufficientCreditsError
		if errors.As(err, &insufficient) {
			return Analysis{}, limit, insufficient
		}
		return Analysis{}, limit, &PersistenceError{Err: err}
	}

	metrics.IncAnalysisCompleted()
	metrics.AddCreditsSpent(price)
	metrics.ObserveAnalysisDurationMs(float64(s.now().Sub(started)) / float64(time.Millisecond))
	return a, limit, nil
}

func (s *Service) generate(ctx context.Context, spec kindSpec, req *Request) (string, error) {
	timeout := s.GenerateTimeout
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	genReq := llm.Request{Prompt: spec.Prompt(req)}
	if data, mime := req.ImageData(); len(data) > 0 {
		genReq.Images = append(genReq.Images, llm.Image{MIME: mime, Data: data})
	}
	raw, err := s.LLM.Generate(genCtx, genReq)
	if err != nil {
		var unavailable *llm.UnavailableError
		if !errors.As(err, &unavailable) {
			// A timeout or transport error is just as retryable as a
			// provider 5xx; no charge has happened yet either way.
			err = &llm.UnavailableError{Provider: "generation", Err: err}
		}
		return "", err
	}
	return raw, nil
}

// storeImage retains the uploaded image alongside the analysis record. A
// storage failure is logged but does not fail the paid request.
func (s *Service) storeImage(ctx context.Context, userID, analysisID string, req *Request) string {
	data, mime := req.ImageData()
	if s.Objects == nil || len(data) == 0 {
		return ""
	}
	name := analysisID + extensionFor(mime)
	key, _, _, err := s.Objects.Save(ctx, userID, name, bytes.NewReader(data))
	if err != nil {
		telemetry.Warn("analysis.image_store_failed", map[string]any{
			"userId":     userID,
			"analysisId": analysisID,
			"error":      err.Error(),
		})
		return ""
	}
	return key
}

// Get returns one analysis owned by the user.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	return s.Repo.GetByID(ctx, userID, analysisID)
}

// List returns the user's analyses, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// inputRecord captures the request fields relevant to the kind, excluding the
// raw image payload.
func inputRecord(spec kindSpec, req *Request) map[string]any {
	record := make(map[string]any)
	if req.FullName != "" {
		record["fullName"] = req.FullName
	}
	if req.BirthDate != "" {
		record["birthDate"] = req.BirthDate
	}
	if req.BirthTime != "" {
		record["birthTime"] = req.BirthTime
	}
	if req.BirthPlace != "" {
		record["birthPlace"] = req.BirthPlace
	}
	if req.Question != "" {
		record["question"] = req.Question
	}
	if spec.RequiresImage {
		_, mime := req.ImageData()
		record["imageMime"] = mime
	}
	return record
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
