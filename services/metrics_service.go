package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/hours"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/utils"
)

const (
	MaxPeriodDays       = 7
	DefaultPopularLimit = 5
	MaxPopularLimit     = utils.MaxPerPage
	dateLayout          = "2006-01-02"
)

type AmountMetric struct {
	Amount           int64    `json:"amount"`
	DiffFromPrevious *float64 `json:"diff_from_previous"`
}

type ReceiptMetric struct {
	Receipt          decimal.Decimal `json:"receipt"`
	DiffFromPrevious *float64        `json:"diff_from_previous"`
}

type PopularProduct struct {
	Product string `json:"product"`
	Amount  int64  `json:"amount"`
}

type DailyReceipt struct {
	Date    string          `json:"date"`
	Receipt decimal.Decimal `json:"receipt"`
}

// MetricsService answers the restaurant dashboard. Periods are calendar
// days and months in the marketplace zone; the queries compare UTC bounds.
type MetricsService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewMetricsService(db *gorm.DB) *MetricsService {
	return &MetricsService{DB: db, Now: time.Now}
}

func startOfDay(t time.Time) time.Time {
	t = t.In(hours.Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, hours.Location())
}

func startOfMonth(t time.Time) time.Time {
	t = t.In(hours.Location())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, hours.Location())
}

// diff is the percentage change from prev to cur, nil when prev is zero.
func diff(cur, prev decimal.Decimal) *float64 {
	if prev.IsZero() {
		return nil
	}
	pct, _ := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	if math.IsInf(pct, 0) || math.IsNaN(pct) {
		return nil
	}
	return &pct
}

func (s *MetricsService) countOrders(ctx context.Context, restaurantID uint, from, to time.Time, status models.OrderStatus) (int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurantID, from.UTC(), to.UTC())
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	return n, q.Count(&n).Error
}

func (s *MetricsService) amount(ctx context.Context, restaurantID uint, cur, prev, end time.Time, status models.OrderStatus) (AmountMetric, error) {
	now, err := s.countOrders(ctx, restaurantID, cur, end, status)
	if err != nil {
		return AmountMetric{}, err
	}
	before, err := s.countOrders(ctx, restaurantID, prev, cur, status)
	if err != nil {
		return AmountMetric{}, err
	}
	return AmountMetric{
		Amount:           now,
		DiffFromPrevious: diff(decimal.NewFromInt(now), decimal.NewFromInt(before)),
	}, nil
}

// DayOrdersAmount counts today's orders against yesterday's.
func (s *MetricsService) DayOrdersAmount(ctx context.Context, restaurantID uint) (AmountMetric, error) {
	today := startOfDay(s.Now())
	return s.amount(ctx, restaurantID, today, today.AddDate(0, 0, -1), today.AddDate(0, 0, 1), "")
}

func (s *MetricsService) MonthOrdersAmount(ctx context.Context, restaurantID uint) (AmountMetric, error) {
	month := startOfMonth(s.Now())
	return s.amount(ctx, restaurantID, month, month.AddDate(0, -1, 0), month.AddDate(0, 1, 0), "")
}

func (s *MetricsService) MonthCanceledOrdersAmount(ctx context.Context, restaurantID uint) (AmountMetric, error) {
	month := startOfMonth(s.Now())
	return s.amount(ctx, restaurantID, month, month.AddDate(0, -1, 0), month.AddDate(0, 1, 0), models.StatusCanceled)
}

func (s *MetricsService) deliveredReceipt(ctx context.Context, restaurantID uint, from, to time.Time) (decimal.Decimal, error) {
	var row struct{ Receipt decimal.Decimal }
	err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS receipt").
		Where("restaurant_id = ? AND status = ? AND delivered_at >= ? AND delivered_at < ?",
			restaurantID, models.StatusDelivered, from.UTC(), to.UTC()).
		Scan(&row).Error
	return row.Receipt.Round(2), err
}

// MonthReceipt sums delivered totals this month against last month.
func (s *MetricsService) MonthReceipt(ctx context.Context, restaurantID uint) (ReceiptMetric, error) {
	month := startOfMonth(s.Now())
	cur, err := s.deliveredReceipt(ctx, restaurantID, month, month.AddDate(0, 1, 0))
	if err != nil {
		return ReceiptMetric{}, err
	}
	prev, err := s.deliveredReceipt(ctx, restaurantID, month.AddDate(0, -1, 0), month)
	if err != nil {
		return ReceiptMetric{}, err
	}
	return ReceiptMetric{Receipt: cur, DiffFromPrevious: diff(cur, prev)}, nil
}

// PopularLimit bounds the ranking size asked for by a caller.
func PopularLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPopularLimit
	case limit > MaxPopularLimit:
		return MaxPopularLimit
	}
	return limit
}

// PopularProducts ranks products by quantity sold in delivered orders.
func (s *MetricsService) PopularProducts(ctx context.Context, restaurantID uint, limit int) ([]PopularProduct, error) {
	limit = PopularLimit(limit)
	out := []PopularProduct{}
	err := s.DB.WithContext(ctx).Table("order_items").
		Select("products.name AS product, SUM(order_items.quantity) AS amount").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.restaurant_id = ? AND orders.status = ?", restaurantID, models.StatusDelivered).
		Group("products.id, products.name").
		Order("amount DESC").Order("products.name").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// dayExpr buckets delivered_at into a local calendar day.
func dayExpr(db *gorm.DB) (string, interface{}) {
	_, offset := time.Now().In(hours.Location()).Zone()
	minutes := offset / 60
	if db.Dialector.Name() == "mysql" {
		return "DATE_FORMAT(DATE_ADD(delivered_at, INTERVAL ? MINUTE), '%Y-%m-%d')", minutes
	}
	return "strftime('%Y-%m-%d', delivered_at, ?)", fmt.Sprintf("%+d minutes", minutes)
}

// DailyReceiptInPeriod returns one entry per local day between from and to
// inclusive. Zero values default to the last seven days.
func (s *MetricsService) DailyReceiptInPeriod(ctx context.Context, restaurantID uint, from, to time.Time) ([]DailyReceipt, error) {
	if to.IsZero() {
		to = s.Now()
	}
	to = startOfDay(to)
	if from.IsZero() {
		from = to.AddDate(0, 0, -(MaxPeriodDays - 1))
	}
	from = startOfDay(from)

	if from.After(to) {
		return nil, ErrDateOrder
	}
	if to.Sub(from) > MaxPeriodDays*24*time.Hour {
		return nil, ErrDateRange
	}
	end := to.AddDate(0, 0, 1)

	db := s.DB.WithContext(ctx)
	expr, arg := dayExpr(db)
	var rows []struct {
		Day     string
		Receipt decimal.Decimal
	}
	err := db.Model(&models.Order{}).
		Select(expr+" AS day, COALESCE(SUM(total), 0) AS receipt", arg).
		Where("restaurant_id = ? AND status = ? AND delivered_at >= ? AND delivered_at < ?",
			restaurantID, models.StatusDelivered, from.UTC(), end.UTC()).
		Group("day").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Receipt.Round(2)
	}
	out := make([]DailyReceipt, 0, MaxPeriodDays+1)
	for d := from; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		out = append(out, DailyReceipt{Date: key, Receipt: byDay[key]})
	}
	return out, nil
}

// ParseDay reads a YYYY-MM-DD date in the marketplace zone. Empty input
// yields the zero time.
func ParseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, v, hours.Location())
}
