package prices

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/models"
)

// Store persists price points in the price_points table.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetPrice returns the stored close for the exact (symbol, day), or nil when absent.
func (s *Store) GetPrice(symbol string, date time.Time) (*PricePoint, error) {
	var row models.PricePoint
	err := s.db.Where("symbol = ? AND date = ?", NormalizeSymbol(symbol), Day(date)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrPriceStore, err)
	}
	return pointFromModel(&row), nil
}

// Save upserts p keyed on (symbol, day).
func (s *Store) Save(p *PricePoint) error {
	row := &models.PricePoint{
		Symbol: NormalizeSymbol(p.Symbol),
		Date:   Day(p.Date),
		Close:  decimal.NewFromFloat(p.Close),
		Open:   nullDecimal(p.Open),
		High:   nullDecimal(p.High),
		Low:    nullDecimal(p.Low),
		Volume: p.Volume,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"close", "open", "high", "low", "volume"}),
	}).Create(row).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPriceStore, err)
	}
	return nil
}

// Series returns the stored closes for symbol in [start, end], oldest first.
func (s *Store) Series(symbol string, start, end time.Time) ([]PricePoint, error) {
	var rows []models.PricePoint
	err := s.db.Where("symbol = ? AND date >= ? AND date <= ?", NormalizeSymbol(symbol), Day(start), Day(end)).
		Order("date ASC").Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPriceStore, err)
	}

	points := make([]PricePoint, 0, len(rows))
	for i := range rows {
		points = append(points, *pointFromModel(&rows[i]))
	}
	return points, nil
}

func pointFromModel(m *models.PricePoint) *PricePoint {
	return &PricePoint{
		Symbol: m.Symbol,
		Date:   Day(m.Date),
		Close:  m.Close.InexactFloat64(),
		Open:   nullFloat(m.Open),
		High:   nullFloat(m.High),
		Low:    nullFloat(m.Low),
		Volume: m.Volume,
	}
}

func nullFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

func nullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*f))
}
