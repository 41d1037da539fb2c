package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/platform/database"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const bookColumns = `id, title, author, description, genre, total_copies, image_path,
		       is_deleted, deleted_at, created_at, updated_at`

func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.Genre, &b.TotalCopies, &b.ImagePath,
		&b.IsDeleted, &b.DeletedAt, &b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Book
	if err := scanBook(database.Conn(ctx, r.db).QueryRow(timeoutCtx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("select book %d: %w", id, err)
	}
	return b, nil
}

func (r *PostgresRepo) Add(ctx context.Context, b *Book) error {
	const insertSQL = `
		INSERT INTO books (title, author, description, genre, total_copies, image_path,
		                   is_deleted, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := database.Conn(ctx, r.db).QueryRow(timeoutCtx, insertSQL,
		b.Title, b.Author, b.Description, b.Genre, b.TotalCopies, b.ImagePath,
		b.IsDeleted, b.DeletedAt, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	const updateSQL = `
		UPDATE books
		SET title = $2, author = $3, description = $4, genre = $5, total_copies = $6,
		    image_path = $7, is_deleted = $8, deleted_at = $9, updated_at = $10
		WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := database.Conn(ctx, r.db).Exec(timeoutCtx, updateSQL,
		b.ID, b.Title, b.Author, b.Description, b.Genre, b.TotalCopies,
		b.ImagePath, b.IsDeleted, b.DeletedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update book %d: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, deleted bool) ([]Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE is_deleted = $1 ORDER BY id ASC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := database.Conn(ctx, r.db).Query(timeoutCtx, query, deleted)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
