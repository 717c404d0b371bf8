package orders

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/db"
)

const (
	NumberPrefix = "PEP"
	dayLayout    = "20060102"
)

// NumberPattern matches generated order numbers. The suffix widens past four
// digits on days with more than 9999 orders.
var NumberPattern = regexp.MustCompile(`^PEP-\d{8}-\d{4,}$`)

// FormatNumber renders PEP-YYYYMMDD-NNNN.
func FormatNumber(day time.Time, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", NumberPrefix, day.Format(dayLayout), sequence)
}

// NumberGenerator hands out order numbers from the per-day counter table.
// The day boundary follows the restaurant's time zone.
type NumberGenerator struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewNumberGenerator(repo Repository, loc *time.Location) (*NumberGenerator, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &NumberGenerator{repo: repo, loc: loc, now: time.Now}, nil
}

// Next allocates the next number. It must run inside the transaction that
// inserts the order so a rollback also releases the counter increment.
func (g *NumberGenerator) Next(ctx context.Context, tx *gorm.DB) (string, error) {
	if tx == nil {
		return "", db.ErrTxRequired
	}
	day := g.now().In(g.loc)
	seq, err := g.repo.WithTx(tx).NextSequence(ctx, day.Format(dayLayout))
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}
	return FormatNumber(day, seq), nil
}
