package cache

import (
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/shopspring/decimal"
)

// productSnapshot is the wire form stored in Redis. Price travels as a
// string so the decimal survives the round trip without float drift.
type productSnapshot struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          string    `json:"price"`
	TotalStock     int       `json:"total_stock"`
	AvailableStock int       `json:"available_stock"`
	CreatedAt      time.Time `json:"created_at"`
}

func fromDomain(p domain.Product) productSnapshot {
	return productSnapshot{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price.String(),
		TotalStock:     p.TotalStock,
		AvailableStock: p.AvailableStock,
		CreatedAt:      p.CreatedAt,
	}
}

func (s productSnapshot) toDomain() (domain.Product, error) {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:             s.ID,
		Name:           s.Name,
		Price:          price,
		TotalStock:     s.TotalStock,
		AvailableStock: s.AvailableStock,
		CreatedAt:      s.CreatedAt,
	}, nil
}
