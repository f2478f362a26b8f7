package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/chooser/internal/contracts"
)

// PriceRepository reads daily OHLC bars from data.daily_prices
// ⭐ SSOT: 가격 데이터 조회는 여기서만 (read-only)
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// LoadHistory retrieves one market's bars within [from, to], oldest first
func (r *PriceRepository) LoadHistory(ctx context.Context, code string, from, to time.Time) (*contracts.Market, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price
		FROM data.daily_prices
		WHERE stock_code = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily prices: %w", err)
	}
	defer rows.Close()

	m := &contracts.Market{
		Name:   code,
		Source: "data.daily_prices:" + code,
	}
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("scan daily price: %w", err)
		}
		b.Date = time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, time.UTC)
		m.Bars = append(m.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily prices: %w", err)
	}

	return m, nil
}

// ListCodes returns codes with at least minRecords bars in [from, to]
func (r *PriceRepository) ListCodes(ctx context.Context, from, to time.Time, minRecords int) ([]string, error) {
	query := `
		SELECT stock_code
		FROM data.daily_prices
		WHERE trade_date BETWEEN $1 AND $2
		GROUP BY stock_code
		HAVING COUNT(*) >= $3
		ORDER BY stock_code
	`

	rows, err := r.pool.Query(ctx, query, from, to, minRecords)
	if err != nil {
		return nil, fmt.Errorf("query market codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan market code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
