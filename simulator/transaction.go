package simulator

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one synthetic payment record. Values are immutable once generated.
type Transaction struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
	Currency      string          `json:"currency"`
	City          string          `json:"city"`
	Country       string          `json:"country"`
	IPAddress     string          `json:"ip_address"`
	PaymentMethod string          `json:"payment_method"`
	VoucherCode   string          `json:"voucher_code"`
	AffiliateID   uuid.UUID       `json:"affiliate_id"`
	Status        string          `json:"status"`
}

const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyCHF = "CHF"
)

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

// PaymentMethods lists the payment methods a transaction may carry, chosen uniformly.
var PaymentMethods = []string{"credit_card", "debit_card", "paypal", "bank_transfer"}

// VoucherCodes lists the named voucher codes. An empty voucher code means none was used.
var VoucherCodes = []string{"DISCOUNT10", "FREESHIP", "SUMMER21", "WELCOME"}

// maxAmountCents is the largest amount, in cents, a transaction may carry (99999.99).
const maxAmountCents = 9999999
