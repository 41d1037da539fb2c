package borrowing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/platform/database"
)

const (
	dialectPostgres   = "postgres"
	tableTransactions = "borrowing_transactions"
	tableBooks        = "books"
	aliasTx           = "t"
	aliasBook         = "b"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
	dialect goqu.DialectWrapper
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout, dialect: goqu.Dialect(dialectPostgres)}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// selectWithBook is the base query joining each transaction to its book.
func (r *PostgresRepo) selectWithBook() *goqu.SelectDataset {
	return r.dialect.
		From(goqu.T(tableTransactions).As(aliasTx)).
		Join(goqu.T(tableBooks).As(aliasBook), goqu.On(goqu.I("t.book_id").Eq(goqu.I("b.id")))).
		Select(
			goqu.I("t.id"), goqu.I("t.book_id"), goqu.I("b.title"), goqu.I("b.author"),
			goqu.I("t.borrowed_date"), goqu.I("t.returned_date"),
			goqu.I("t.is_archived"), goqu.I("t.archived_date"),
		).
		Order(goqu.I("t.borrowed_date").Desc(), goqu.I("t.id").Desc()).
		Prepared(true)
}

func scanTransaction(row pgx.Row, t *Transaction) error {
	return row.Scan(&t.ID, &t.BookID, &t.BookTitle, &t.BookAuthor,
		&t.BorrowedDate, &t.ReturnedDate, &t.IsArchived, &t.ArchivedDate)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Transaction, error) {
	query, args, err := r.selectWithBook().Where(goqu.I("t.id").Eq(id)).ToSQL()
	if err != nil {
		return Transaction{}, fmt.Errorf("build transaction query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var t Transaction
	if err := scanTransaction(database.Conn(ctx, r.db).QueryRow(timeoutCtx, query, args...), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, fmt.Errorf("select transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *PostgresRepo) Add(ctx context.Context, t *Transaction) error {
	query, args, err := r.dialect.Insert(tableTransactions).
		Rows(goqu.Record{
			"book_id":       t.BookID,
			"borrowed_date": t.BorrowedDate,
			"returned_date": t.ReturnedDate,
			"is_archived":   t.IsArchived,
			"archived_date": t.ArchivedDate,
		}).
		Returning("id").
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := database.Conn(ctx, r.db).QueryRow(timeoutCtx, query, args...).Scan(&t.ID); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, t *Transaction) error {
	query, args, err := r.dialect.Update(tableTransactions).
		Set(goqu.Record{
			"returned_date": t.ReturnedDate,
			"is_archived":   t.IsArchived,
			"archived_date": t.ArchivedDate,
		}).
		Where(goqu.C("id").Eq(t.ID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := database.Conn(ctx, r.db).Exec(timeoutCtx, query, args...)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]Transaction, error) {
	return r.list(ctx, r.selectWithBook().Where(goqu.I("t.is_archived").IsFalse()))
}

func (r *PostgresRepo) ListOpen(ctx context.Context, bookID int64) ([]Transaction, error) {
	where := []goqu.Expression{
		goqu.I("t.is_archived").IsFalse(),
		goqu.I("t.returned_date").IsNull(),
	}
	if bookID != 0 {
		where = append(where, goqu.I("t.book_id").Eq(bookID))
	}
	return r.list(ctx, r.selectWithBook().Where(where...))
}

func (r *PostgresRepo) ListArchived(ctx context.Context) ([]Transaction, error) {
	return r.list(ctx, r.selectWithBook().Where(goqu.I("t.is_archived").IsTrue()))
}

func (r *PostgresRepo) list(ctx context.Context, ds *goqu.SelectDataset) ([]Transaction, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build transaction query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := database.Conn(ctx, r.db).Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
