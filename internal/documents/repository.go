package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kensetsu-erp/kensetsu-erp/internal/platform/db"
)

// Repository defines persistence operations for documents.
type Repository interface {
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error)
	Create(ctx context.Context, doc Document) (int64, error)
	Update(ctx context.Context, doc Document) error
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
	Delete(ctx context.Context, id int64) error
	ConvertQuotation(ctx context.Context, quotationID int64, invoice Document) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const documentColumns = `id, doc_number, doc_type, customer_id, project_id, title, issue_date,
valid_until, due_date, tax_rate, tax_mode, subtotal, tax, total, notes, status, source_id, created_at, updated_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	var docType, taxMode, status string
	err := row.Scan(&d.ID, &d.DocNumber, &docType, &d.CustomerID, &d.ProjectID, &d.Title, &d.IssueDate,
		&d.ValidUntil, &d.DueDate, &d.TaxRate, &taxMode, &d.Subtotal, &d.Tax, &d.Total,
		&d.Notes, &status, &d.SourceID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.DocType = DocType(docType)
	d.TaxMode = TaxMode(taxMode)
	d.Status = Status(status)
	return &d, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	details, err := r.listDetails(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	doc.Details = details
	return doc, nil
}

func (r *repository) listDetails(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, documentID int64) ([]DocumentDetail, error) {
	rows, err := q.Query(ctx, `SELECT id, document_id, line_no, product_id, item_name, spec, quantity, unit, unit_price, amount
FROM document_details WHERE document_id = $1 ORDER BY line_no ASC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentDetail
	for rows.Next() {
		var d DocumentDetail
		if err := rows.Scan(&d.ID, &d.DocumentID, &d.LineNo, &d.ProductID, &d.ItemName, &d.Spec,
			&d.Quantity, &d.Unit, &d.UnitPrice, &d.Amount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.DocType != nil {
		conditions = append(conditions, fmt.Sprintf("doc_type = $%d", argPos))
		args = append(args, string(*req.DocType))
		argPos++
	}
	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM documents %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+documentColumns+` FROM documents %s
ORDER BY issue_date DESC, id DESC LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, doc Document) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		id, err = insertDocument(ctx, tx, doc)
		return err
	})
	return id, err
}

// insertDocument allocates the document number and writes header plus details
// inside the caller's transaction.
func insertDocument(ctx context.Context, tx pgx.Tx, doc Document) (int64, error) {
	number, err := generateDocNumber(ctx, tx, doc.DocType, doc.IssueDate)
	if err != nil {
		return 0, fmt.Errorf("generate document number: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx, `INSERT INTO documents
(doc_number, doc_type, customer_id, project_id, title, issue_date, valid_until, due_date,
 tax_rate, tax_mode, subtotal, tax, total, notes, status, source_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
RETURNING id`,
		number, string(doc.DocType), doc.CustomerID, doc.ProjectID, doc.Title, doc.IssueDate,
		doc.ValidUntil, doc.DueDate, doc.TaxRate, string(doc.TaxMode),
		doc.Subtotal, doc.Tax, doc.Total, doc.Notes, string(doc.Status), doc.SourceID).Scan(&id)
	if err != nil {
		return 0, err
	}
	if err := insertDetails(ctx, tx, id, doc.Details); err != nil {
		return 0, err
	}
	return id, nil
}

func insertDetails(ctx context.Context, tx pgx.Tx, documentID int64, details []DocumentDetail) error {
	for _, d := range details {
		_, err := tx.Exec(ctx, `INSERT INTO document_details
(document_id, line_no, product_id, item_name, spec, quantity, unit, unit_price, amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			documentID, d.LineNo, d.ProductID, d.ItemName, d.Spec, d.Quantity, d.Unit, d.UnitPrice, d.Amount)
		if err != nil {
			return err
		}
	}
	return nil
}

// Update rewrites a draft's header and replaces its detail list.
func (r *repository) Update(ctx context.Context, doc Document) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE documents SET
customer_id = $2, project_id = $3, title = $4, issue_date = $5, valid_until = $6, due_date = $7,
tax_rate = $8, tax_mode = $9, subtotal = $10, tax = $11, total = $12, notes = $13, updated_at = NOW()
WHERE id = $1 AND status = $14`,
			doc.ID, doc.CustomerID, doc.ProjectID, doc.Title, doc.IssueDate, doc.ValidUntil, doc.DueDate,
			doc.TaxRate, string(doc.TaxMode), doc.Subtotal, doc.Tax, doc.Total, doc.Notes, string(StatusDraft))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotEditable
		}
		if _, err := tx.Exec(ctx, `DELETE FROM document_details WHERE document_id = $1`, doc.ID); err != nil {
			return err
		}
		return insertDetails(ctx, tx, doc.ID, doc.Details)
	})
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE documents SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2`, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM document_details WHERE document_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND status = $2`, id, string(StatusDraft))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ConvertQuotation marks the quotation converted and inserts the derived
// invoice in one transaction, so a concurrent convert loses on the
// conditional update and nothing is written.
func (r *repository) ConvertQuotation(ctx context.Context, quotationID int64, invoice Document) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE documents SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2`, quotationID, string(StatusIssued), string(StatusConverted))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyConverted
		}
		id, err = insertDocument(ctx, tx, invoice)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// generateDocNumber allocates {QT|INV}-{YYMM}-{SEQ} from a per-month sequence row.
func generateDocNumber(ctx context.Context, tx pgx.Tx, docType DocType, date time.Time) (string, error) {
	prefix := "QT"
	if docType == TypeInvoice {
		prefix = "INV"
	}
	var seq int64
	period := date.Format("200601")
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, prefix, period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format("0601"), seq), nil
}
