package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kensetsu-erp/kensetsu-erp/internal/platform/db"
)

// Repository defines persistence operations for expenses.
type Repository interface {
	Get(ctx context.Context, id int64) (*Expense, error)
	List(ctx context.Context, req ListExpensesRequest) ([]Expense, int, error)
	Create(ctx context.Context, e Expense) (int64, error)
	Update(ctx context.Context, id int64, e Expense) error
	SetReceiptURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
	Transition(ctx context.Context, id int64, from, to Status, approval *Approval) error
	ListApprovals(ctx context.Context, expenseID int64) ([]Approval, error)
	ListSubmittedOlderThan(ctx context.Context, age time.Duration) ([]Expense, error)
	GenerateClaimNumber(ctx context.Context, date time.Time) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const expenseColumns = `id, claim_number, applicant_id, department, expense_date, receipt_date,
amount, category, payment_method, description, purpose, receipt_url, status, created_at, updated_at`

func scanExpense(row pgx.Row) (*Expense, error) {
	var e Expense
	var category, method, status string
	err := row.Scan(&e.ID, &e.ClaimNumber, &e.ApplicantID, &e.Department, &e.ExpenseDate, &e.ReceiptDate,
		&e.Amount, &category, &method, &e.Description, &e.Purpose, &e.ReceiptURL, &status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.Category = Category(category)
	e.PaymentMethod = PaymentMethod(method)
	e.Status = Status(status)
	return &e, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Expense, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	return scanExpense(row)
}

func (r *repository) List(ctx context.Context, req ListExpensesRequest) ([]Expense, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.ApplicantID != nil {
		conditions = append(conditions, fmt.Sprintf("applicant_id = $%d", argPos))
		args = append(args, *req.ApplicantID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
	}
	if req.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, string(*req.Category))
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("expense_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("expense_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM expenses %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+expenseColumns+` FROM expenses %s
ORDER BY expense_date DESC, id DESC LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, e Expense) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses
(claim_number, applicant_id, department, expense_date, receipt_date, amount, category, payment_method, description, purpose, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
RETURNING id`,
		e.ClaimNumber, e.ApplicantID, e.Department, e.ExpenseDate, e.ReceiptDate,
		e.Amount, string(e.Category), string(e.PaymentMethod), e.Description, e.Purpose, string(e.Status)).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, e Expense) error {
	tag, err := r.pool.Exec(ctx, `UPDATE expenses SET
department = $2, expense_date = $3, receipt_date = $4, amount = $5,
category = $6, payment_method = $7, description = $8, purpose = $9, updated_at = NOW()
WHERE id = $1`,
		id, e.Department, e.ExpenseDate, e.ReceiptDate, e.Amount,
		string(e.Category), string(e.PaymentMethod), e.Description, e.Purpose)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetReceiptURL(ctx context.Context, id int64, url string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE expenses SET receipt_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND status = $2`, id, string(StatusDraft))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Transition performs the optimistic conditional status update and, when given,
// the approval insert in a single transaction. Losing the race on status yields
// ErrConflictingTransition.
func (r *repository) Transition(ctx context.Context, id int64, from, to Status, approval *Approval) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE expenses SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2`, id, string(from), string(to))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM expenses WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrConflictingTransition
		}
		if approval != nil {
			_, err = tx.Exec(ctx, `INSERT INTO expense_approvals (expense_id, approver_id, resulting_status, comment, at)
VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))`,
				id, approval.ApproverID, string(approval.ResultingStatus), approval.Comment, approval.At)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ListApprovals(ctx context.Context, expenseID int64) ([]Approval, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, expense_id, approver_id, resulting_status, comment, at
FROM expense_approvals WHERE expense_id = $1 ORDER BY at ASC, id ASC`, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Approval
	for rows.Next() {
		var a Approval
		var status string
		if err := rows.Scan(&a.ID, &a.ExpenseID, &a.ApproverID, &status, &a.Comment, &a.At); err != nil {
			return nil, err
		}
		a.ResultingStatus = Status(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) ListSubmittedOlderThan(ctx context.Context, age time.Duration) ([]Expense, error) {
	cutoff := time.Now().Add(-age)
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses
WHERE status = $1 AND updated_at < $2 ORDER BY updated_at ASC`, string(StatusSubmitted), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// GenerateClaimNumber allocates EXP-{YYMM}-{SEQ} from a per-month sequence row.
func (r *repository) GenerateClaimNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := r.pool.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "EXP", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EXP-%s-%04d", date.Format("0601"), seq), nil
}
