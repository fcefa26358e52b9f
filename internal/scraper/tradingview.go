package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
)

// TradingView adapter defaults.
const (
	defaultIndexURL          = "https://in.tradingview.com/markets/indices/quotes-all/"
	tradingViewTimeout       = 30 * time.Second
	tradingViewSourceName    = "tradingview"
	tradingViewUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	rowKeySeparator          = ":"
	minQuoteCellCount        = 6
)

// currencyPrefixes maps quote-value prefixes to ISO currency codes.
// Longer prefixes are matched first.
var currencyPrefixes = []struct {
	prefix   string
	currency string
}{
	{"US$", "USD"}, {"CA$", "CAD"}, {"C$", "CAD"}, {"AU$", "AUD"},
	{"A$", "AUD"}, {"NZ$", "NZD"}, {"HK$", "HKD"}, {"S$", "SGD"},
	{"CN¥", "CNY"}, {"JP¥", "JPY"}, {"$", "USD"}, {"£", "GBP"},
	{"€", "EUR"}, {"¥", "JPY"}, {"₩", "KRW"}, {"₹", "INR"},
	{"₱", "PHP"}, {"₫", "VND"}, {"₺", "TRY"}, {"₦", "NGN"},
	{"₽", "RUB"}, {"₪", "ILS"},
}

// TradingViewSource scrapes the TradingView all-indices quote table.
type TradingViewSource struct {
	url    string
	logger logger.Logger
}

// NewTradingViewSource creates a TradingView adapter. An empty url uses
// the public indices page.
func NewTradingViewSource(url string, log logger.Logger) *TradingViewSource {
	if url == "" {
		url = defaultIndexURL
	}
	return &TradingViewSource{url: url, logger: log}
}

// Name identifies the adapter.
func (s *TradingViewSource) Name() string {
	return tradingViewSourceName
}

// FetchQuotes scrapes the indices table and returns up to limit quotes.
func (s *TradingViewSource) FetchQuotes(ctx context.Context, limit int) ([]domain.MarketQuote, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	collector := colly.NewCollector(colly.UserAgent(tradingViewUserAgent))
	collector.SetRequestTimeout(tradingViewTimeout)

	quotes := make([]domain.MarketQuote, 0, limit)
	var requestErr error

	collector.OnHTML("table tbody tr", func(e *colly.HTMLElement) {
		if limit > 0 && len(quotes) >= limit {
			return
		}
		if quote, ok := parseQuoteRow(e); ok {
			quotes = append(quotes, quote)
		}
	})

	collector.OnError(func(_ *colly.Response, err error) {
		requestErr = err
	})

	if visitErr := collector.Visit(s.url); visitErr != nil {
		return nil, fmt.Errorf("visit tradingview: %w", visitErr)
	}
	if requestErr != nil {
		return nil, fmt.Errorf("fetch tradingview: %w", requestErr)
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("tradingview returned no parseable quote rows")
	}

	s.logger.Info("TradingView fetch complete", logger.Int("quotes", len(quotes)))
	return quotes, nil
}

// parseQuoteRow extracts a quote from one table row. Rows carry a
// data-rowkey of the form EXCHANGE:SYMBOL; cells follow as
// name, last, change %, change, high, low.
func parseQuoteRow(e *colly.HTMLElement) (domain.MarketQuote, bool) {
	rowKey := e.Attr("data-rowkey")
	if rowKey == "" {
		return domain.MarketQuote{}, false
	}

	exchange, symbol := splitRowKey(rowKey)

	cells := e.DOM.Find("td")
	if cells.Length() < minQuoteCellCount {
		return domain.MarketQuote{}, false
	}

	name := cellText(cells, 0)
	if name == "" {
		name = symbol
	}

	lastText := cellText(cells, 1)
	last, currency, lastOK := parseQuoteValue(lastText)
	if !lastOK {
		return domain.MarketQuote{}, false
	}

	changePercent, _, _ := parseQuoteValue(cellText(cells, 2))
	change, _, _ := parseQuoteValue(cellText(cells, 3))
	high, _, _ := parseQuoteValue(cellText(cells, 4))
	low, _, _ := parseQuoteValue(cellText(cells, 5))

	return domain.MarketQuote{
		Symbol:        symbol,
		Name:          name,
		Last:          last,
		Change:        change,
		ChangePercent: changePercent,
		High:          high,
		Low:           low,
		Currency:      currency,
		Exchange:      exchange,
		Source:        tradingViewSourceName,
	}, true
}

// splitRowKey splits an EXCHANGE:SYMBOL row key.
func splitRowKey(rowKey string) (exchange, symbol string) {
	parts := strings.SplitN(rowKey, rowKeySeparator, 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", rowKey
}

// cellText returns the collapsed text of the idx-th cell.
func cellText(cells *goquery.Selection, idx int) string {
	return domain.CollapseWhitespace(cells.Eq(idx).Text())
}

// parseQuoteValue parses a numeric cell, stripping currency prefixes,
// thousands separators, percent signs, and unicode minus signs. It
// returns the parsed value and any currency the prefix implied.
func parseQuoteValue(text string) (value float64, currency string, ok bool) {
	if text == "" || text == "—" {
		return 0, "", false
	}

	for _, cp := range currencyPrefixes {
		if strings.HasPrefix(text, cp.prefix) {
			currency = cp.currency
			text = strings.TrimPrefix(text, cp.prefix)
			break
		}
	}

	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, "%", "")
	text = strings.ReplaceAll(text, "−", "-") // unicode minus
	text = strings.TrimPrefix(text, "+")
	text = strings.TrimSpace(text)

	value, parseErr := strconv.ParseFloat(text, 64)
	if parseErr != nil {
		return 0, "", false
	}

	return value, currency, true
}
