// Package quoting prices inventory materials under stored policies and
// snapshots the result.
package quoting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/slabquote/internal/inventory"
	"github.com/Simplici0/slabquote/internal/pricing"
	"github.com/Simplici0/slabquote/internal/store"
)

// ErrUnknownMaterial is returned when a material name matches no group.
var ErrUnknownMaterial = errors.New("unknown material")

// Store is the persistence the service needs.
type Store interface {
	ListLots(ctx context.Context) ([]inventory.Lot, error)
	GetPolicy(ctx context.Context, name string) (pricing.Policy, error)
	CreateQuote(ctx context.Context, q store.Quote) error
}

// Request asks for a quote. Either Material or UnitCost must be set;
// UnitCost wins when both are. A nil ApplyDiscount applies the discount.
type Request struct {
	Title            string   `json:"title"`
	Material         string   `json:"material"`
	UnitCost         *float64 `json:"unit_cost,omitempty"`
	FinishedAreaSqFt float64  `json:"finished_area_sqft"`
	AccessoryCost    float64  `json:"accessory_cost"`
	ApplyDiscount    *bool    `json:"apply_discount,omitempty"`
	Policy           string   `json:"policy"`
}

// Options tune a Service.
type Options struct {
	DefaultPolicy  string
	MinAreaSqFt    float64
	Representative inventory.Representative
}

// Service resolves materials and policies and runs the pricing engine.
type Service struct {
	store Store
	opts  Options
	now   func() time.Time
	newID func() string
}

// NewService returns a Service over s.
func NewService(s Store, opts Options) *Service {
	if opts.DefaultPolicy == "" {
		opts.DefaultPolicy = pricing.DefaultPolicyName
	}
	return &Service{
		store: s,
		opts:  opts,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Policy loads name, or the default policy when name is empty, and applies
// the configured minimum area override.
func (s *Service) Policy(ctx context.Context, name string) (pricing.Policy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.opts.DefaultPolicy
	}

	p, err := s.store.GetPolicy(ctx, name)
	if err != nil {
		return pricing.Policy{}, err
	}
	if s.opts.MinAreaSqFt > 0 {
		p.MinAreaSqFt = s.opts.MinAreaSqFt
	}
	return p, nil
}

// Groups returns the current inventory grouped by material.
func (s *Service) Groups(ctx context.Context) ([]inventory.Group, error) {
	lots, err := s.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.GroupLots(lots, s.opts.Representative), nil
}

// Material finds a group by its full name.
func (s *Service) Material(ctx context.Context, name string) (inventory.Group, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return inventory.Group{}, err
	}
	g, ok := inventory.FindGroup(groups, name)
	if !ok {
		return inventory.Group{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return g, nil
}

// Price computes a quote without storing it.
func (s *Service) Price(ctx context.Context, req Request) (store.Quote, error) {
	policy, err := s.Policy(ctx, req.Policy)
	if err != nil {
		return store.Quote{}, err
	}

	material := strings.TrimSpace(req.Material)
	var unitCost float64
	switch {
	case req.UnitCost != nil:
		unitCost = *req.UnitCost
	case material != "":
		g, err := s.Material(ctx, material)
		if err != nil {
			return store.Quote{}, err
		}
		material = g.Name
		unitCost = g.UnitCost
	default:
		return store.Quote{}, fmt.Errorf("%w: material or unit cost is required", pricing.ErrInvalidInput)
	}

	engineReq := pricing.Request{
		UnitCost:         unitCost,
		FinishedAreaSqFt: req.FinishedAreaSqFt,
		AccessoryCost:    req.AccessoryCost,
		ApplyDiscount:    req.ApplyDiscount == nil || *req.ApplyDiscount,
	}
	result, err := pricing.Compute(engineReq, policy)
	if err != nil {
		return store.Quote{}, err
	}

	return store.Quote{
		ID:         s.newID(),
		CreatedAt:  s.now().UTC().Truncate(time.Second),
		Title:      strings.TrimSpace(req.Title),
		Material:   material,
		PolicyName: policy.Name,
		Request:    engineReq,
		Totals:     result,
	}, nil
}

// Create prices req and stores the snapshot.
func (s *Service) Create(ctx context.Context, req Request) (store.Quote, error) {
	q, err := s.Price(ctx, req)
	if err != nil {
		return store.Quote{}, err
	}
	if err := s.store.CreateQuote(ctx, q); err != nil {
		return store.Quote{}, err
	}
	return q, nil
}
