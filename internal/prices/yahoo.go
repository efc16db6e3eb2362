package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
)

const yahooUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"

// yahooChartResponse is the v8 chart API response. Indicator arrays are
// parallel to Timestamp and may contain nulls.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooDownloader fetches daily bars from the Yahoo Finance v8 chart API.
type YahooDownloader struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewYahooDownloader creates a downloader against baseURL.
func NewYahooDownloader(httpClient *http.Client, baseURL string) *YahooDownloader {
	return &YahooDownloader{httpClient: httpClient, baseURL: baseURL}
}

// Download returns the bar whose trading day is date. It returns nil when
// the symbol has no bar that day (weekends, holidays).
func (d *YahooDownloader) Download(ctx context.Context, symbol string, date time.Time) (*PricePoint, error) {
	symbol = NormalizeSymbol(symbol)
	day := Day(date)

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(day.Unix(), 10))
	q.Set("period2", strconv.FormatInt(day.AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", "1d")
	reqURL := d.baseURL + "/" + url.PathEscape(symbol) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPriceDownload, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("User-Agent", yahooUA)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPriceDownload, fmt.Errorf("http request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	var chart yahooChartResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&chart)

	if chart.Chart.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrSymbolNotFound,
			fmt.Errorf("%s: %s: %s", symbol, chart.Chart.Error.Code, chart.Chart.Error.Description))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrPriceDownload, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, symbol))
	}
	if decodeErr != nil {
		return nil, apperrors.Wrap(apperrors.ErrPriceDownload, fmt.Errorf("decoding response: %w", decodeErr))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	for i, ts := range result.Timestamp {
		if !Day(time.Unix(ts, 0)).Equal(day) {
			continue
		}
		closePrice := at(quote.Close, i)
		if closePrice == nil {
			continue
		}
		return &PricePoint{
			Symbol: symbol,
			Date:   day,
			Close:  *closePrice,
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Volume: at(quote.Volume, i),
		}, nil
	}
	return nil, nil
}

func at[T any](values []*T, i int) *T {
	if i < len(values) {
		return values[i]
	}
	return nil
}
