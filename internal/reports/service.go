package reports

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
)

// DateLayout is the accepted format for report range bounds.
const DateLayout = "2006-01-02"

const maxReportDays = 366

// Service provides admin sales reporting.
type Service interface {
	Sales(ctx context.Context, q SalesQuery) (*SalesReport, error)
}

type service struct {
	repo *Repository
	loc  *time.Location
}

// NewService builds a report service that buckets days in loc.
func NewService(repo *Repository, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, loc: loc}, nil
}

// ParseRange parses from/to query values into a SalesQuery.
func ParseRange(from, to string, loc *time.Location) (SalesQuery, error) {
	if loc == nil {
		loc = time.UTC
	}
	fields := map[string]string{}
	start, err := time.ParseInLocation(DateLayout, from, loc)
	if err != nil {
		fields["from"] = "must be YYYY-MM-DD"
	}
	end, err := time.ParseInLocation(DateLayout, to, loc)
	if err != nil {
		fields["to"] = "must be YYYY-MM-DD"
	}
	if len(fields) > 0 {
		return SalesQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid report range").WithDetails(fields)
	}
	return SalesQuery{From: start, To: end}, nil
}

func (s *service) Sales(ctx context.Context, q SalesQuery) (*SalesReport, error) {
	from := startOfDay(q.From, s.loc)
	to := startOfDay(q.To, s.loc)
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > maxReportDays {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "report range cannot exceed %d days", maxReportDays)
	}
	end := to.AddDate(0, 0, 1)

	rows, err := s.repo.OrdersBetween(ctx, from, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load orders")
	}
	top, err := s.repo.TopItems(ctx, from, end, topItemsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load top items")
	}

	report := &SalesReport{
		From:     from.Format(DateLayout),
		To:       to.Format(DateLayout),
		Daily:    make([]DailySales, 0, days),
		TopItems: make([]TopItem, 0, len(top)),
	}
	index := make(map[string]int, days)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(DateLayout)
		index[key] = len(report.Daily)
		report.Daily = append(report.Daily, DailySales{Date: key})
	}

	for _, row := range rows {
		i, ok := index[row.CreatedAt.In(s.loc).Format(DateLayout)]
		if !ok {
			continue
		}
		report.Daily[i].Orders++
		report.Daily[i].GrossCents += row.TotalCents
		report.Daily[i].DiscountCents += row.DiscountCents
		report.OrderCount++
		report.GrossCents += row.TotalCents
		report.DiscountCents += row.DiscountCents
	}
	if report.OrderCount > 0 {
		report.AverageOrderCents = report.GrossCents / report.OrderCount
	}

	for _, row := range top {
		report.TopItems = append(report.TopItems, TopItem{
			MenuItemID:   row.MenuItemID,
			Name:         row.ItemName,
			Quantity:     row.Quantity,
			RevenueCents: row.RevenueCents,
		})
	}
	return report, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
