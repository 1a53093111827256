// Package economiza talks to the SEFAZ/AL "Economiza Alagoas" price-search API.
package economiza

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"basket-prices/config"
	"basket-prices/metrics"
	"basket-prices/models"
	"basket-prices/utils"
)

const (
	searchPath      = "/produto/pesquisa"
	DefaultPageSize = 50
)

// Options configures a Client independently of the environment.
type Options struct {
	BaseURL      string
	PageSize     int
	HTTPTimeout  time.Duration
	RequestDelay time.Duration
	Retry        utils.RetryPolicy
}

// Client performs paginated product searches for one market at a time.
type Client struct {
	http         *resty.Client
	retry        utils.RetryPolicy
	pageSize     int
	requestDelay time.Duration
	logger       *utils.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// New creates a Client from application config.
func New(cfg *config.Config, logger *utils.Logger, m *metrics.Metrics) *Client {
	return NewWithOptions(Options{
		BaseURL:      cfg.EconomizaBaseURL,
		PageSize:     cfg.PageSize,
		HTTPTimeout:  cfg.HTTPTimeout,
		RequestDelay: cfg.RequestDelay,
		Retry: utils.RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay,
			Multiplier:  2,
			Logger:      logger,
		},
	}, logger, m)
}

// NewWithOptions creates a Client with explicit options.
func NewWithOptions(opts Options, logger *utils.Logger, m *metrics.Metrics) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if opts.HTTPTimeout > 0 {
		httpClient.SetTimeout(opts.HTTPTimeout)
	}

	return &Client{
		http:         httpClient,
		retry:        opts.Retry,
		pageSize:     opts.PageSize,
		requestDelay: opts.RequestDelay,
		logger:       logger,
		metrics:      m,
		now:          time.Now,
	}
}

type searchBody struct {
	Product       productFilter       `json:"produto"`
	Establishment establishmentFilter `json:"estabelecimento"`
	Days          int                 `json:"dias"`
	Page          int                 `json:"pagina"`
	PerPage       int                 `json:"registrosPorPagina"`
}

type productFilter struct {
	Description string `json:"descricao"`
}

type establishmentFilter struct {
	Individual struct {
		TaxID string `json:"cnpj"`
	} `json:"individual"`
}

type searchResponse struct {
	Content    []contentItem `json:"conteudo"`
	TotalPages int           `json:"totalPaginas"`
}

type contentItem struct {
	Product product `json:"produto"`
}

type product struct {
	Description string     `json:"descricao"`
	Unit        string     `json:"unidadeMedida"`
	GTIN        flexString `json:"gtin"`
	Sale        sale       `json:"venda"`
}

type sale struct {
	Price *float64 `json:"valorVenda"`
	Date  string   `json:"dataVenda"`
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// Fetch runs the full paginated search for one term in one market. When a
// page cannot be fetched after all retries the whole pair is abandoned and an
// empty result is returned; the failure is only logged.
func (c *Client) Fetch(ctx context.Context, req models.SearchRequest) []models.PriceRecord {
	var records []models.PriceRecord
	collectedAt := c.now()
	op := fmt.Sprintf("search %q at %s", req.Term, req.Market.Name)

	for page := 1; ; page++ {
		out := utils.Retry(ctx, c.retry, op, func(ctx context.Context) (*searchResponse, error) {
			return c.fetchPage(ctx, req, page)
		})
		if !out.OK() {
			c.metrics.UpstreamGiveUp()
			c.logger.Error("[economiza] Giving up on %q at %s (page %d): %v",
				req.Term, req.Market.Name, page, out.Err)
			return nil
		}

		res := out.Value
		records = append(records, toRecords(res.Content, req, collectedAt)...)

		totalPages := res.TotalPages
		if totalPages < 1 {
			totalPages = 1
		}
		c.logger.Debug("[economiza] %s - %q - page %d/%d - items: %d - days: %d",
			req.Market.Name, req.Term, page, totalPages, len(res.Content), req.LookbackDays)

		if page >= totalPages {
			break
		}
	}

	return records
}

func (c *Client) fetchPage(ctx context.Context, req models.SearchRequest, page int) (*searchResponse, error) {
	if c.requestDelay > 0 {
		timer := time.NewTimer(c.requestDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	body := searchBody{
		Product: productFilter{Description: strings.ToUpper(req.Term)},
		Days:    req.LookbackDays,
		Page:    page,
		PerPage: c.pageSize,
	}
	body.Establishment.Individual.TaxID = req.Market.TaxID

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("AppToken", req.Token).
		SetBody(body).
		Post(searchPath)
	if err != nil {
		c.metrics.UpstreamRequest(false)
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	if !resp.IsSuccess() {
		c.metrics.UpstreamRequest(false)
		return nil, fmt.Errorf("%w: status %d", models.ErrUpstreamUnavailable, resp.StatusCode())
	}

	var out searchResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		c.metrics.UpstreamRequest(false)
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrUpstreamUnavailable, err)
	}

	c.metrics.UpstreamRequest(true)
	return &out, nil
}
