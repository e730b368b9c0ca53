// Package report turns a property request into a validated investment report:
// it renders the instruction, calls the generation service under the report
// schema, parses the output defensively and attaches locally computed metrics.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"property_report/pkg/core/agent"
	"property_report/pkg/core/invest"
	"property_report/pkg/core/llm"
	"property_report/pkg/core/prompt"
	"property_report/pkg/core/schema"
	"property_report/pkg/core/store"
	"property_report/pkg/models"
)

// Generator is the slice of agent.Manager the service needs.
type Generator interface {
	Generate(ctx context.Context, agentType string, req llm.Request) (*agent.Generation, error)
	GetActiveProvider() string
}

// Archive persists responses.
type Archive interface {
	Save(ctx context.Context, rec *store.Record) error
	Get(ctx context.Context, id string) (*store.Record, error)
}

// Options tune a Service.
type Options struct {
	// Strict turns schema violations into ErrContract instead of warnings.
	Strict bool
	// CacheTTL bounds how long identical requests are served from cache.
	CacheTTL time.Duration
	// Tolerance is the relative difference at which model totals are flagged.
	Tolerance float64
	// HostedPromptID and HostedPromptVersion override the prompt file.
	HostedPromptID      string
	HostedPromptVersion string
}

// DefaultCacheTTL applies when Options.CacheTTL is zero.
const DefaultCacheTTL = 24 * time.Hour

// Deps are the collaborators a Service is built from. Cache may be nil.
type Deps struct {
	Agents  Generator
	Prompts *prompt.Registry
	Schema  *schema.Schema
	Archive Archive
	Cache   store.Cache
	Logger  *zap.Logger
}

type Service struct {
	agents  Generator
	prompts *prompt.Registry
	schema  *schema.Schema
	archive Archive
	cache   store.Cache
	logger  *zap.Logger
	opts    Options
	now     func() time.Time
}

// NewService checks deps and returns a ready service.
func NewService(deps Deps, opts Options) (*Service, error) {
	var errs []error
	if deps.Agents == nil {
		errs = append(errs, errors.New("agents is required"))
	}
	if deps.Prompts == nil {
		errs = append(errs, errors.New("prompts is required"))
	} else if _, err := deps.Prompts.GetPrompt(prompt.ReportGenerate); err != nil {
		errs = append(errs, err)
	}
	if deps.Schema == nil {
		errs = append(errs, errors.New("schema is required"))
	}
	if deps.Archive == nil {
		errs = append(errs, errors.New("archive is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("report service: %w", err)
	}

	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = invest.DefaultTolerance
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		agents:  deps.Agents,
		prompts: deps.Prompts,
		schema:  deps.Schema,
		archive: deps.Archive,
		cache:   deps.Cache,
		logger:  logger.Named("report"),
		opts:    opts,
		now:     time.Now,
	}, nil
}

// Generate produces, computes and archives one report.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("address", req.Address), zap.Float64("price", req.PurchasePrice))

	key := s.cacheKey(req)
	if !req.NoCache {
		if resp := s.fromCache(ctx, key, log); resp != nil {
			return resp, nil
		}
	}

	pt, err := s.prompts.GetPrompt(prompt.ReportGenerate)
	if err != nil {
		return nil, err
	}
	overrides := describeOverrides(req.Overrides)
	date := s.now().UTC().Format("2006-01-02")
	instruction, err := prompt.RenderUserPrompt(pt, prompt.NewContext().
		Set("Address", req.Address).
		Set("PurchasePrice", req.PurchasePrice).
		Set("Overrides", overrides).
		Set("Date", date))
	if err != nil {
		return nil, fmt.Errorf("failed to render instruction: %w", err)
	}

	gen, err := s.agents.Generate(ctx, agent.ReportWriter, llm.Request{
		SystemPrompt: pt.SystemPrompt,
		Instruction:  instruction,
		Prompt: &llm.PromptRef{
			ID:      firstNonEmpty(s.opts.HostedPromptID, pt.HostedPromptID),
			Version: firstNonEmpty(s.opts.HostedPromptVersion, pt.HostedPromptVersion),
			Variables: map[string]string{
				"address":        req.Address,
				"purchase_price": strconv.FormatFloat(req.PurchasePrice, 'f', -1, 64),
				"overrides":      strings.Join(overrides, "\n"),
				"date":           date,
			},
		},
		Schema: &llm.SchemaRef{Name: prompt.ReportSchema, Document: s.schema.Document()},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	rep, warnings, err := Parse(s.schema, gen.Text, s.opts.Strict)
	if err != nil {
		log.Warn("unusable report from provider", zap.String("provider", gen.Provider), zap.Error(err))
		return nil, err
	}
	warnings = append(warnings, pinPrice(rep, req.PurchasePrice)...)

	m, err := Compute(rep, req.Overrides, s.opts.Tolerance)
	if err != nil {
		return nil, err
	}

	resp := &GenerateResponse{
		ID:            uuid.NewString(),
		Report:        rep,
		Metrics:       m.Metrics,
		Sensitivity:   m.Sensitivity,
		Discrepancies: m.Discrepancies,
		Warnings:      append(m.Warnings, warnings...),
		Provider:      gen.Provider,
		Model:         gen.Model,
		GeneratedAt:   s.now().UTC(),
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	if err := s.archive.Save(ctx, &store.Record{
		ID:        resp.ID,
		Address:   req.Address,
		Provider:  gen.Provider,
		CreatedAt: resp.GeneratedAt,
		Payload:   payload,
	}); err != nil {
		return nil, fmt.Errorf("failed to archive report: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, payload, s.opts.CacheTTL); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}

	log.Info("report generated",
		zap.String("id", resp.ID),
		zap.String("provider", gen.Provider),
		zap.Int("warnings", len(resp.Warnings)),
		zap.Int("discrepancies", len(resp.Discrepancies)),
		zap.Duration("elapsed", gen.Elapsed))
	return resp, nil
}

// Get returns an archived response.
func (s *Service) Get(ctx context.Context, id string) (*GenerateResponse, error) {
	rec, err := s.archive.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var resp GenerateResponse
	if err := json.Unmarshal(rec.Payload, &resp); err != nil {
		return nil, fmt.Errorf("archived report %s is corrupt: %w", id, err)
	}
	return &resp, nil
}

// Compute runs the calculator over a caller-supplied report without calling
// the generation service.
func (s *Service) Compute(raw []byte, o invest.Overrides) (*models.PropertyReport, *Metrics, error) {
	return ComputeRaw(s.schema, raw, o, s.opts.Tolerance)
}

// Schema exposes the contract the service validates against.
func (s *Service) Schema() *schema.Schema { return s.schema }

func (s *Service) fromCache(ctx context.Context, key string, log *zap.Logger) *GenerateResponse {
	if s.cache == nil {
		return nil
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var resp GenerateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Warn("dropping corrupt cache entry", zap.Error(err))
		return nil
	}
	resp.Cached = true
	log.Debug("served from cache", zap.String("id", resp.ID))
	return &resp
}

// The key covers everything that changes the generated report.
func (s *Service) cacheKey(req GenerateRequest) string {
	overrides, _ := json.Marshal(req.Overrides)
	return store.CacheKey(
		s.agents.GetActiveProvider(),
		strings.ToLower(req.Address),
		strconv.FormatFloat(req.PurchasePrice, 'f', 2, 64),
		string(overrides),
	)
}

// pinPrice makes the requested price authoritative over the model's.
func pinPrice(rep *models.PropertyReport, price float64) []string {
	reported := rep.Purchase.Price
	rep.Purchase.Price = models.Float(price)
	if reported != nil && math.Abs(*reported-price) > 0.5 {
		return []string{fmt.Sprintf("purchase.price: model reported %.0f, using requested %.0f", *reported, price)}
	}
	return nil
}

func describeOverrides(o invest.Overrides) []string {
	var out []string
	pct := func(label string, v *invest.Percent) {
		if v != nil {
			out = append(out, fmt.Sprintf("%s: %s%%", label, strconv.FormatFloat(float64(*v), 'f', -1, 64)))
		}
	}
	amt := func(label string, v *float64) {
		if v != nil {
			out = append(out, fmt.Sprintf("%s: $%.0f per year", label, *v))
		}
	}
	pct("Closing costs", o.ClosingCostPct)
	pct("Points", o.PointsPct)
	pct("Vacancy", o.VacancyPct)
	pct("Maintenance (of gross rent)", o.MaintenancePctOfGrossRent)
	pct("Management (of EGI)", o.ManagementPctOfEGI)
	amt("Property taxes", o.TaxesAnnual)
	amt("Insurance", o.InsuranceAnnual)
	amt("HOA", o.HOAAnnual)
	amt("Landlord-paid utilities", o.UtilitiesLandlordAnnual)
	amt("Other operating expenses", o.OtherOpExAnnual)
	pct("Down payment", o.DownPaymentPct)
	pct("Interest rate", o.InterestRatePct)
	if o.TermMonths != nil {
		out = append(out, fmt.Sprintf("Loan term: %d months", *o.TermMonths))
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
