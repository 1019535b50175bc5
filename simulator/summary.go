package simulator

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// Summary aggregates a generated batch for the run report.
type Summary struct {
	Count      int
	Total      decimal.Decimal
	ByCurrency map[string]int
	ByStatus   map[string]int
	Vouchers   int
}

// Summarize counts transactions per currency and status.
func Summarize(txns []Transaction) Summary {
	s := Summary{
		Count:      len(txns),
		Total:      decimal.Zero,
		ByCurrency: make(map[string]int),
		ByStatus:   make(map[string]int),
	}
	for _, t := range txns {
		s.Total = s.Total.Add(t.Amount)
		s.ByCurrency[t.Currency]++
		s.ByStatus[t.Status]++
		if t.VoucherCode != "" {
			s.Vouchers++
		}
	}
	return s
}

// Render writes the summary as a console table.
func (s Summary) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Dimension", "Value", "Count", "Share"})
	for _, k := range sortedKeys(s.ByCurrency) {
		table.Append([]string{"currency", k, strconv.Itoa(s.ByCurrency[k]), s.share(s.ByCurrency[k])})
	}
	for _, k := range sortedKeys(s.ByStatus) {
		table.Append([]string{"status", k, strconv.Itoa(s.ByStatus[k]), s.share(s.ByStatus[k])})
	}
	table.Append([]string{"voucher", "any", strconv.Itoa(s.Vouchers), s.share(s.Vouchers)})
	table.SetFooter([]string{"total", s.Total.StringFixed(2), strconv.Itoa(s.Count), ""})
	table.Render()
}

func (s Summary) share(n int) string {
	if s.Count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(s.Count))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
