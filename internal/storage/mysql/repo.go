package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"blinkit_scraper/internal/domain"
)

// insertBatch bounds the placeholders of one multi-row INSERT.
const insertBatch = 200

const defaultPageSize = 50

// columns promoted out of the attributes blob
var promoted = map[string]bool{"product_id": true, "product_name": true, "brand": true, "price": true}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// text renders a scraped value as a column string; nil stays NULL.
func text(v any) *string {
	var s string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s = x
	case json.Number:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return &s
}

// number accepts the shapes a price shows up in; anything else is NULL.
func number(v any) *float64 {
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case json.Number:
		f, err = x.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &f
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// SaveRun stores the run row and every record in one transaction. Record
// order is kept as seq, starting at 1.
func (r *Repo) SaveRun(ctx context.Context, run domain.Run, recs []domain.ProductRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertRunSQL,
		run.ID,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
		run.Targets,
		run.Records,
		run.MockRecords,
		run.OutputPath,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for start := 0; start < len(recs); start += insertBatch {
		end := min(start+insertBatch, len(recs))
		if err := insertProducts(ctx, tx, run.ID, start, recs[start:end]); err != nil {
			return fmt.Errorf("insert products %d-%d: %w", start+1, end, err)
		}
	}
	return tx.Commit()
}

func insertProducts(ctx context.Context, tx *sql.Tx, runID string, offset int, recs []domain.ProductRecord) error {
	values := make([]string, 0, len(recs))
	args := make([]any, 0, len(recs)*12) // 12 params per row
	for i, rec := range recs {
		attrs := make(map[string]any, len(rec.Values))
		for k, v := range rec.Values {
			if v != nil && !promoted[k] {
				attrs[k] = v
			}
		}
		attrJSON, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("encode attributes: %w", err)
		}

		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			runID,
			offset+i+1,
			string(rec.Origin),
			rec.Latitude,
			rec.Longitude,
			rec.Category,
			rec.Subcategory,
			valStr(text(rec.Get("product_id"))),
			valStr(text(rec.Get("product_name"))),
			valStr(text(rec.Get("brand"))),
			valF64(number(rec.Get("price"))),
			valJSON(attrJSON),
		)
	}
	sqlStr := insertProductsPrefix + strings.Join(values, ",") + insertProductsOnDup
	_, err := tx.ExecContext(ctx, sqlStr, args...)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (domain.Run, error) {
	var run domain.Run
	var out sql.NullString
	if err := s.Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Targets,
		&run.Records,
		&run.MockRecords,
		&out,
	); err != nil {
		return domain.Run{}, err
	}
	run.OutputPath = out.String
	return run, nil
}

func (r *Repo) GetRun(ctx context.Context, id string) (domain.Run, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, getRunSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Run{}, domain.ErrNotFound
	}
	return run, err
}

func (r *Repo) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := r.db.QueryContext(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// ListProducts pages through a run in seq order. The cursor is the last seq
// of the previous page.
func (r *Repo) ListProducts(ctx context.Context, runID string, q domain.ProductsQuery) (domain.ProductsPage, error) {
	if _, err := r.GetRun(ctx, runID); err != nil {
		return domain.ProductsPage{}, err
	}

	after := int64(0)
	if q.Cursor != nil && *q.Cursor != "" {
		n, err := strconv.ParseInt(*q.Cursor, 10, 64)
		if err != nil || n < 0 {
			return domain.ProductsPage{}, fmt.Errorf("%w: cursor %q", domain.ErrInvalidInput, *q.Cursor)
		}
		after = n
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var sb strings.Builder
	sb.WriteString(listProductsSQL)
	args := []any{runID, after}
	if q.Category != nil {
		sb.WriteString(" AND category = ?")
		args = append(args, *q.Category)
	}
	if q.Subcategory != nil {
		sb.WriteString(" AND subcategory = ?")
		args = append(args, *q.Subcategory)
	}
	// one extra row tells whether another page exists
	sb.WriteString(" ORDER BY seq LIMIT ?")
	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return domain.ProductsPage{}, err
	}
	defer rows.Close()

	var out []domain.StoredProduct
	for rows.Next() {
		var (
			p                   domain.StoredProduct
			origin              string
			productID, name, br sql.NullString
			price               sql.NullFloat64
			attrs               sql.RawBytes
		)
		if err := rows.Scan(
			&p.RunID,
			&p.Seq,
			&origin,
			&p.Latitude,
			&p.Longitude,
			&p.Category,
			&p.Subcategory,
			&productID,
			&name,
			&br,
			&price,
			&attrs,
		); err != nil {
			return domain.ProductsPage{}, err
		}
		p.Origin = domain.Origin(origin)
		if productID.Valid {
			s := productID.String
			p.ProductID = &s
		}
		if name.Valid {
			s := name.String
			p.Name = &s
		}
		if br.Valid {
			s := br.String
			p.Brand = &s
		}
		if price.Valid {
			f := price.Float64
			p.Price = &f
		}
		if len(attrs) > 0 {
			dec := json.NewDecoder(strings.NewReader(string(attrs)))
			dec.UseNumber()
			_ = dec.Decode(&p.Attributes)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return domain.ProductsPage{}, err
	}

	page := domain.ProductsPage{Items: out}
	if len(out) > limit {
		page.Items = out[:limit]
		next := strconv.FormatInt(page.Items[limit-1].Seq, 10)
		page.NextCursor = &next
	}
	return page, nil
}
