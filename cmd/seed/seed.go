package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/pepdine/pep-backend/internal/catalog"
	"github.com/pepdine/pep-backend/internal/coupons"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/pagination"
	"github.com/pepdine/pep-backend/pkg/types"
)

// File is the YAML seed document.
type File struct {
	Categories []CategorySeed `yaml:"categories"`
	MenuItems  []MenuItemSeed `yaml:"menu_items"`
	Coupons    []CouponSeed   `yaml:"coupons"`
}

type CategorySeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SortOrder   int    `yaml:"sort_order"`
}

type MenuItemSeed struct {
	Name                 string      `yaml:"name"`
	Category             string      `yaml:"category"`
	Description          string      `yaml:"description"`
	ImageURL             string      `yaml:"image_url"`
	MRPCents             int         `yaml:"mrp_cents"`
	DiscountedPriceCents int         `yaml:"discounted_price_cents"`
	Quantity             int         `yaml:"quantity"`
	Veg                  bool        `yaml:"veg"`
	Sizes                []SizeSeed  `yaml:"sizes"`
	Addons               []AddonSeed `yaml:"addons"`
}

type SizeSeed struct {
	Name       string `yaml:"name"`
	PriceCents int    `yaml:"price_cents"`
	Default    bool   `yaml:"default"`
}

type AddonSeed struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	PriceCents int    `yaml:"price_cents"`
}

type CouponSeed struct {
	Code             string     `yaml:"code"`
	Description      string     `yaml:"description"`
	Type             string     `yaml:"type"`
	Value            string     `yaml:"value"`
	MinOrderCents    int        `yaml:"min_order_cents"`
	MaxDiscountCents *int       `yaml:"max_discount_cents"`
	ExpiresAt        *time.Time `yaml:"expires_at"`
}

// Load reads and parses a seed file.
func Load(path string) (File, error) {
	var f File
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return f, fmt.Errorf("read seed file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

type couponCreator interface {
	Create(ctx context.Context, input coupons.CreateInput) (*models.Coupon, error)
}

// Result counts what a run created; existing rows are skipped.
type Result struct {
	Categories int
	MenuItems  int
	Coupons    int
}

// Seeder applies a File idempotently: categories and menu items match by
// name, coupons by code.
type Seeder struct {
	catalog catalog.Service
	coupons couponCreator
	logg    *logger.Logger
}

func NewSeeder(catalogSvc catalog.Service, couponSvc couponCreator, logg *logger.Logger) *Seeder {
	return &Seeder{catalog: catalogSvc, coupons: couponSvc, logg: logg}
}

func (s *Seeder) Apply(ctx context.Context, f File) (Result, error) {
	var res Result

	categories, err := s.catalog.ListCategories(ctx, true)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	categoryIDs := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		categoryIDs[key(c.Name)] = c.ID
	}
	for _, c := range f.Categories {
		if _, ok := categoryIDs[key(c.Name)]; ok {
			continue
		}
		created, err := s.catalog.CreateCategory(ctx, catalog.CategoryInput{
			Name:        c.Name,
			Description: c.Description,
			SortOrder:   c.SortOrder,
			IsActive:    true,
		})
		if err != nil {
			return res, fmt.Errorf("category %q: %w", c.Name, err)
		}
		categoryIDs[key(c.Name)] = created.ID
		res.Categories++
	}

	existing, err := s.menuNames(ctx)
	if err != nil {
		return res, err
	}
	for _, item := range f.MenuItems {
		if existing[key(item.Name)] {
			continue
		}
		input, err := menuInput(item, categoryIDs)
		if err != nil {
			return res, err
		}
		if _, err := s.catalog.CreateMenuItem(ctx, input); err != nil {
			return res, fmt.Errorf("menu item %q: %w", item.Name, err)
		}
		existing[key(item.Name)] = true
		res.MenuItems++
	}

	for _, c := range f.Coupons {
		input, err := couponInput(c)
		if err != nil {
			return res, err
		}
		_, err = s.coupons.Create(ctx, input)
		switch {
		case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
			s.logg.Info(s.logg.WithField(ctx, "code", c.Code), "coupon already exists; skipping")
		case err != nil:
			return res, fmt.Errorf("coupon %q: %w", c.Code, err)
		default:
			res.Coupons++
		}
	}
	return res, nil
}

func (s *Seeder) menuNames(ctx context.Context) (map[string]bool, error) {
	names := map[string]bool{}
	params := pagination.Params{Limit: pagination.MaxLimit}
	for {
		page, err := s.catalog.ListMenu(ctx, catalog.MenuFilters{}, params, true)
		if err != nil {
			return nil, fmt.Errorf("list menu: %w", err)
		}
		for _, item := range page.Items {
			names[key(item.Name)] = true
		}
		if page.NextCursor == "" {
			return names, nil
		}
		params.Cursor = page.NextCursor
	}
}

func menuInput(item MenuItemSeed, categoryIDs map[string]uuid.UUID) (catalog.MenuItemInput, error) {
	input := catalog.MenuItemInput{
		Name:                 item.Name,
		Description:          item.Description,
		MRPCents:             item.MRPCents,
		DiscountedPriceCents: item.DiscountedPriceCents,
		Quantity:             item.Quantity,
		IsVeg:                item.Veg,
		IsActive:             true,
	}
	if item.Category != "" {
		id, ok := categoryIDs[key(item.Category)]
		if !ok {
			return input, fmt.Errorf("menu item %q: unknown category %q", item.Name, item.Category)
		}
		input.CategoryID = &id
	}
	if item.ImageURL != "" {
		url := item.ImageURL
		input.ImageURL = &url
	}
	for _, size := range item.Sizes {
		input.Sizes = append(input.Sizes, types.MenuSize{Name: size.Name, PriceCents: size.PriceCents, IsDefault: size.Default})
	}
	for _, addon := range item.Addons {
		input.Addons = append(input.Addons, types.MenuAddon{ID: addon.ID, Name: addon.Name, PriceCents: addon.PriceCents})
	}
	return input, nil
}

func couponInput(c CouponSeed) (coupons.CreateInput, error) {
	couponType, err := enums.ParseCouponType(c.Type)
	if err != nil {
		return coupons.CreateInput{}, fmt.Errorf("coupon %q: %w", c.Code, err)
	}
	value, err := decimal.NewFromString(c.Value)
	if err != nil {
		return coupons.CreateInput{}, fmt.Errorf("coupon %q: invalid value %q: %w", c.Code, c.Value, err)
	}
	return coupons.CreateInput{
		Code:             c.Code,
		Description:      c.Description,
		Type:             couponType,
		Value:            value,
		MinOrderCents:    c.MinOrderCents,
		MaxDiscountCents: c.MaxDiscountCents,
		ExpiresAt:        c.ExpiresAt,
	}, nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
