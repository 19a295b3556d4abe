package promotion

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrPromotionNotFound is returned when a named promotion is not configured
var ErrPromotionNotFound = shared.NewDomainError("PROMOTION_NOT_FOUND", "promotion not found")

// Evaluation is the combined result of every active promotion for one order
type Evaluation struct {
	OrderCode string             `json:"orderCode"`
	Results   []promotion.Result `json:"results"`
	Discount  valueobject.Amount `json:"discount"`
}

// Service evaluates the configured promotions against orders
type Service struct {
	promotions []*promotion.Promotion
	byName     map[string]*promotion.Promotion
	logger     *zap.Logger
}

// LoadPromotions builds promotions from configuration. Arguments are decoded and
// validated here so a bad definition fails at start-up.
func LoadPromotions(defs []config.PromotionConfig) ([]*promotion.Promotion, error) {
	var errs []error
	out := make([]*promotion.Promotion, 0, len(defs))

	for _, def := range defs {
		if !def.IsEnabled() {
			continue
		}
		p, err := buildPromotion(def)
		if err != nil {
			errs = append(errs, fmt.Errorf("promotion %q: %w", def.Name, err))
			continue
		}
		out = append(out, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func buildPromotion(def config.PromotionConfig) (*promotion.Promotion, error) {
	conditions := make([]promotion.ConditionArgs, 0, len(def.Conditions))
	for _, c := range def.Conditions {
		args, err := promotion.ParseCondition(c.Code, c.Args)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, args)
	}

	actions := make([]promotion.ActionArgs, 0, len(def.Actions))
	for _, a := range def.Actions {
		args, err := promotion.ParseAction(a.Code, a.Args)
		if err != nil {
			return nil, err
		}
		actions = append(actions, args)
	}

	return promotion.New(def.Name, conditions, actions)
}

// NewService creates a Service over already loaded promotions
func NewService(promotions []*promotion.Promotion, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]*promotion.Promotion, len(promotions))
	for _, p := range promotions {
		byName[p.Name] = p
	}
	return &Service{promotions: promotions, byName: byName, logger: logger.Named("promotion")}
}

// Promotions returns the active promotions in configuration order
func (s *Service) Promotions() []*promotion.Promotion {
	return s.promotions
}

// Evaluate runs every active promotion against the order
func (s *Service) Evaluate(ctx context.Context, ch promotion.Channel, o *order.Order) Evaluation {
	_, span := telemetry.StartServiceSpan(ctx, "promotion", "evaluate")
	defer span.End()

	eval := Evaluation{Results: make([]promotion.Result, 0, len(s.promotions))}
	if o != nil {
		eval.OrderCode = o.Code
		telemetry.SetAttributes(span, telemetry.SpanAttrOrderCode, o.Code)
	}

	for _, p := range s.promotions {
		res := p.Evaluate(ch, o)
		eval.Results = append(eval.Results, res)
		eval.Discount = eval.Discount.Add(res.Total)
	}

	s.logger.Debug("Evaluated promotions",
		zap.String("order_code", eval.OrderCode),
		zap.Int("promotions", len(s.promotions)),
		zap.Int64("discount", eval.Discount.Int64()),
	)
	telemetry.SetAttributes(span, telemetry.SpanAttrAmount, eval.Discount.Int64())
	return eval
}

// EvaluateNamed runs one promotion by name
func (s *Service) EvaluateNamed(ctx context.Context, name string, ch promotion.Channel, o *order.Order) (promotion.Result, error) {
	p, ok := s.byName[name]
	if !ok {
		return promotion.Result{}, ErrPromotionNotFound.WithMessage("promotion not found: " + name)
	}
	_, span := telemetry.StartServiceSpan(ctx, "promotion", "evaluate_named",
		telemetry.WithAttribute("promotion.name", name),
	)
	defer span.End()
	return p.Evaluate(ch, o), nil
}
