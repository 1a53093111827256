package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"basket-prices/models"
)

const upsertBatchSize = 50

// PostgresStore implements every storage interface on top of PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens a connection to PostgreSQL, bootstraps the schema
// and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := NewPostgresStoreWithDB(db)
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return s, nil
}

// NewPostgresStoreWithDB wraps an existing connection without touching the schema.
func NewPostgresStoreWithDB(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS markets (
			tax_id VARCHAR(14) PRIMARY KEY,
			name   TEXT        NOT NULL
		);

		CREATE TABLE IF NOT EXISTS price_records (
			fingerprint     VARCHAR(16)   PRIMARY KEY,
			market_tax_id   VARCHAR(14)   NOT NULL,
			market_name     TEXT          NOT NULL DEFAULT '',
			product_name    TEXT          NOT NULL,
			normalized_name TEXT          NOT NULL,
			catalog_code    TEXT,
			price           NUMERIC(12,2) NOT NULL,
			unit_type       VARCHAR(10)   NOT NULL,
			unit_label      TEXT          NOT NULL DEFAULT '',
			last_sale_date  TEXT          NOT NULL DEFAULT '',
			collected_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			job_id          TEXT          NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_price_records_code   ON price_records(catalog_code);
		CREATE INDEX IF NOT EXISTS idx_price_records_market ON price_records(market_tax_id);

		CREATE TABLE IF NOT EXISTS collection_jobs (
			id                TEXT        PRIMARY KEY,
			requested_markets TEXT[]      NOT NULL DEFAULT '{}',
			lookback_days     INT         NOT NULL,
			status            VARCHAR(16) NOT NULL,
			breakdown         JSONB       NOT NULL DEFAULT '[]',
			total_items_saved INT         NOT NULL DEFAULT 0,
			error_message     TEXT,
			started_at        TIMESTAMPTZ NOT NULL,
			finished_at       TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS baskets (
			id         BIGSERIAL   PRIMARY KEY,
			owner_id   TEXT        NOT NULL,
			name       TEXT        NOT NULL,
			items      JSONB       NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// ListMarkets returns the requested markets, or all of them when taxIDs is empty.
func (s *PostgresStore) ListMarkets(ctx context.Context, taxIDs []string) ([]models.Market, error) {
	var markets []models.Market
	var err error
	if len(taxIDs) == 0 {
		err = s.db.SelectContext(ctx, &markets,
			`SELECT tax_id, name FROM markets ORDER BY name`)
	} else {
		err = s.db.SelectContext(ctx, &markets,
			`SELECT tax_id, name FROM markets WHERE tax_id = ANY($1) ORDER BY name`,
			pq.Array(taxIDs))
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: list markets: %w", err)
	}
	return markets, nil
}

// UpsertRecords writes records in batches keyed by fingerprint. Rows already
// present only get their collection timestamp and job id refreshed, so
// re-ingesting unchanged data never adds rows. Fingerprints must be unique
// within one call.
func (s *PostgresStore) UpsertRecords(ctx context.Context, records []models.PriceRecord) (int, error) {
	saved := 0
	for i := 0; i < len(records); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.upsertBatch(ctx, records[i:end]); err != nil {
			return saved, fmt.Errorf("%w: postgres upsert: %w", models.ErrPersistence, err)
		}
		saved += end - i
	}
	return saved, nil
}

const priceColumns = 12

func (s *PostgresStore) upsertBatch(ctx context.Context, batch []models.PriceRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*priceColumns)

	for idx, r := range batch {
		base := idx * priceColumns
		placeholders := make([]string, priceColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.Fingerprint, r.MarketTaxID, r.MarketName, r.ProductName, r.NormalizedName,
			r.CatalogCode, r.Price, string(r.UnitType), r.UnitLabel, r.LastSaleDate,
			r.CollectedAt, r.JobID)
	}

	query := fmt.Sprintf(`
		INSERT INTO price_records (fingerprint, market_tax_id, market_name, product_name,
			normalized_name, catalog_code, price, unit_type, unit_label, last_sale_date,
			collected_at, job_id)
		VALUES %s
		ON CONFLICT (fingerprint) DO UPDATE
			SET collected_at = EXCLUDED.collected_at, job_id = EXCLUDED.job_id
	`, strings.Join(valueStrings, ","))

	_, err := s.db.ExecContext(ctx, query, valueArgs...)
	return err
}

// PricesFor returns every stored price for the given catalog codes in the given markets.
func (s *PostgresStore) PricesFor(ctx context.Context, catalogCodes, marketTaxIDs []string) ([]models.PriceRow, error) {
	var rows []models.PriceRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT catalog_code, product_name, price, market_tax_id, market_name
		FROM price_records
		WHERE catalog_code = ANY($1) AND market_tax_id = ANY($2)
		ORDER BY market_tax_id, catalog_code, price
	`, pq.Array(catalogCodes), pq.Array(marketTaxIDs))
	if err != nil {
		return nil, fmt.Errorf("postgres: prices for basket: %w", err)
	}
	return rows, nil
}

// ProductNames maps catalog codes to the most recently collected product name.
func (s *PostgresStore) ProductNames(ctx context.Context, catalogCodes []string) (map[string]string, error) {
	var rows []struct {
		CatalogCode string `db:"catalog_code"`
		ProductName string `db:"product_name"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT DISTINCT ON (catalog_code) catalog_code, product_name
		FROM price_records
		WHERE catalog_code = ANY($1)
		ORDER BY catalog_code, collected_at DESC
	`, pq.Array(catalogCodes))
	if err != nil {
		return nil, fmt.Errorf("postgres: product names: %w", err)
	}

	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[r.CatalogCode] = r.ProductName
	}
	return names, nil
}

type jobRow struct {
	ID               string         `db:"id"`
	RequestedMarkets pq.StringArray `db:"requested_markets"`
	LookbackDays     int            `db:"lookback_days"`
	Status           string         `db:"status"`
	Breakdown        []byte         `db:"breakdown"`
	TotalItemsSaved  int            `db:"total_items_saved"`
	ErrorMessage     *string        `db:"error_message"`
	StartedAt        time.Time      `db:"started_at"`
	FinishedAt       *time.Time     `db:"finished_at"`
}

func breakdownJSON(b []models.MarketBreakdown) ([]byte, error) {
	if b == nil {
		b = []models.MarketBreakdown{}
	}
	return json.Marshal(b)
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.CollectionJob) error {
	breakdown, err := breakdownJSON(job.Breakdown)
	if err != nil {
		return fmt.Errorf("postgres: encode breakdown: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collection_jobs (id, requested_markets, lookback_days, status,
			breakdown, total_items_saved, error_message, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, job.ID, pq.Array(job.RequestedMarkets), job.LookbackDays, string(job.Status),
		breakdown, job.TotalItemsSaved, job.ErrorMessage, job.StartedAt, job.FinishedAt)
	if err != nil {
		return fmt.Errorf("%w: create job: %w", models.ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *models.CollectionJob) error {
	breakdown, err := breakdownJSON(job.Breakdown)
	if err != nil {
		return fmt.Errorf("postgres: encode breakdown: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE collection_jobs
		SET status = $2, breakdown = $3, total_items_saved = $4,
			error_message = $5, finished_at = $6
		WHERE id = $1
	`, job.ID, string(job.Status), breakdown, job.TotalItemsSaved, job.ErrorMessage, job.FinishedAt)
	if err != nil {
		return fmt.Errorf("%w: update job: %w", models.ErrPersistence, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update job: %w", models.ErrPersistence, err)
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", job.ID, models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*models.CollectionJob, error) {
	var row jobRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, requested_markets, lookback_days, status, breakdown,
			total_items_saved, error_message, started_at, finished_at
		FROM collection_jobs
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get job: %w", err)
	}

	job := &models.CollectionJob{
		ID:               row.ID,
		RequestedMarkets: []string(row.RequestedMarkets),
		LookbackDays:     row.LookbackDays,
		Status:           models.JobStatus(row.Status),
		TotalItemsSaved:  row.TotalItemsSaved,
		ErrorMessage:     row.ErrorMessage,
		StartedAt:        row.StartedAt,
		FinishedAt:       row.FinishedAt,
	}
	if err := json.Unmarshal(row.Breakdown, &job.Breakdown); err != nil {
		return nil, fmt.Errorf("postgres: decode breakdown: %w", err)
	}
	return job, nil
}

type basketRow struct {
	ID        int64     `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Name      string    `db:"name"`
	Items     []byte    `db:"items"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *PostgresStore) GetBasket(ctx context.Context, id int64) (*models.Basket, error) {
	var row basketRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_id, name, items, created_at, updated_at
		FROM baskets
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("basket %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get basket: %w", err)
	}

	b := &models.Basket{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Items, &b.Items); err != nil {
		return nil, fmt.Errorf("postgres: decode basket items: %w", err)
	}
	return b, nil
}
