package simulator

import (
	"errors"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNegativeCount = errors.New("transaction count must not be negative")

// CurrencyWeights is the currency mix of generated transactions.
var CurrencyWeights = MustDistribution(
	Choice[string]{CurrencyUSD, 5},
	Choice[string]{CurrencyEUR, 30},
	Choice[string]{CurrencyGBP, 55},
	Choice[string]{CurrencyCHF, 10},
)

// StatusWeights is the status mix of generated transactions.
var StatusWeights = MustDistribution(
	Choice[string]{StatusCompleted, 95},
	Choice[string]{StatusPending, 1},
	Choice[string]{StatusFailed, 1},
)

// VoucherWeights makes most transactions carry no voucher; each named code
// appears once in every 24 draws on average.
var VoucherWeights = MustDistribution(
	Choice[string]{"", 20},
	Choice[string]{VoucherCodes[0], 1},
	Choice[string]{VoucherCodes[1], 1},
	Choice[string]{VoucherCodes[2], 1},
	Choice[string]{VoucherCodes[3], 1},
)

// GeneratorConfig drives the transaction generator.
type GeneratorConfig struct {
	// Seed fixes the random source. Zero picks a random seed, so runs differ.
	Seed int64
	// Now supplies the transaction timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Generator produces synthetic transactions. It is not safe for concurrent use.
type Generator struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// New returns a Generator with its own faker instance.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Generator{
		faker: gofakeit.New(uint64(cfg.Seed)),
		now:   cfg.Now,
	}
}

// Generate returns exactly n transactions in generation order.
// The whole batch is held in memory; callers bound n.
func (g *Generator) Generate(n int) ([]Transaction, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	txns := make([]Transaction, n)
	for i := range txns {
		txns[i] = g.Next()
	}
	return txns, nil
}

// Next returns a single transaction with every field drawn independently.
func (g *Generator) Next() Transaction {
	f := g.faker
	return Transaction{
		TransactionID: g.uuid(),
		UserID:        f.Username(),
		Amount:        decimal.New(int64(f.Number(0, maxAmountCents)), -2),
		Timestamp:     g.now().UTC(),
		Currency:      CurrencyWeights.Pick(f),
		City:          f.City(),
		Country:       f.Country(),
		IPAddress:     f.IPv4Address(),
		PaymentMethod: f.RandomString(PaymentMethods),
		VoucherCode:   VoucherWeights.Pick(f),
		AffiliateID:   g.uuid(),
		Status:        StatusWeights.Pick(f),
	}
}

// uuid draws a version 4 UUID from the faker so seeded runs stay reproducible.
func (g *Generator) uuid() uuid.UUID {
	id, err := uuid.Parse(g.faker.UUID())
	if err != nil {
		return uuid.New()
	}
	return id
}
