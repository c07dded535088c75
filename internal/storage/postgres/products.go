// internal/storage/postgres/products.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dressrental/internal/calendar"
	"dressrental/internal/product"
	"dressrental/internal/shared"
	"dressrental/internal/storage"
)

const productColumns = `id, kind, rent_price, color, model, fabric, image_path, is_picked_up, reservation_periods`

var _ storage.ProductRepository = (*ProductRepository)(nil)

// ProductRepository persists dresses and clutches in the products table.
type ProductRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db, tracer: tracer()}
}

func (r *ProductRepository) Save(ctx context.Context, p product.Rentable) error {
	ctx, span := r.tracer.Start(ctx, "products.save",
		trace.WithAttributes(attribute.String("product.id", p.ID().String())),
	)
	defer span.End()
	return insertProduct(ctx, r.db, p)
}

func (r *ProductRepository) SaveMany(ctx context.Context, ps []product.Rentable) error {
	ctx, span := r.tracer.Start(ctx, "products.save_many",
		trace.WithAttributes(attribute.Int("product.count", len(ps))),
	)
	defer span.End()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, p := range ps {
			if err := insertProduct(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertProduct(ctx context.Context, q queryer, p product.Rentable) error {
	rec, err := productToRecord(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.Kind, rec.RentPrice, rec.Color, rec.Model, rec.Fabric, rec.ImagePath, rec.IsPickedUp, rec.ReservationPeriods)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert product %s: %w", rec.ID, err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id shared.ID) (product.Rentable, error) {
	ctx, span := r.tracer.Start(ctx, "products.find_by_id",
		trace.WithAttributes(attribute.String("product.id", id.String())),
	)
	defer span.End()

	rec, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NewNotFoundError(storage.EntityProduct, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product %s: %w", id, err)
	}
	return productFromRecord(rec)
}

func (r *ProductRepository) FindMany(ctx context.Context) ([]product.Rentable, error) {
	ctx, span := r.tracer.Start(ctx, "products.find_many")
	defer span.End()
	return queryProducts(ctx, r.db, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
}

func (r *ProductRepository) FindManyByIDs(ctx context.Context, ids []shared.ID) ([]product.Rentable, error) {
	ctx, span := r.tracer.Start(ctx, "products.find_many_by_ids",
		trace.WithAttributes(attribute.Int("product.count", len(ids))),
	)
	defer span.End()
	return findProductsByIDs(ctx, r.db, ids)
}

func findProductsByIDs(ctx context.Context, q queryer, ids []shared.ID) ([]product.Rentable, error) {
	return queryProducts(ctx, q, `
		SELECT `+productColumns+` FROM products
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at, id
	`, pq.Array(shared.IDStrings(ids)))
}

func (r *ProductRepository) Update(ctx context.Context, p product.Rentable) error {
	ctx, span := r.tracer.Start(ctx, "products.update",
		trace.WithAttributes(attribute.String("product.id", p.ID().String())),
	)
	defer span.End()

	rec, err := productToRecord(p)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET kind = $2, rent_price = $3, color = $4, model = $5, fabric = $6, image_path = $7,
		    is_picked_up = $8, reservation_periods = $9, updated_at = NOW()
		WHERE id = $1
	`, rec.ID, rec.Kind, rec.RentPrice, rec.Color, rec.Model, rec.Fabric, rec.ImagePath, rec.IsPickedUp, rec.ReservationPeriods)
	if err != nil {
		return fmt.Errorf("update product %s: %w", rec.ID, err)
	}
	ok, err := expectAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewNotFoundError(storage.EntityProduct, rec.ID)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id shared.ID) error {
	return r.DeleteManyByIDs(ctx, []shared.ID{id})
}

func (r *ProductRepository) DeleteManyByIDs(ctx context.Context, ids []shared.ID) error {
	ctx, span := r.tracer.Start(ctx, "products.delete_many",
		trace.WithAttributes(attribute.Int("product.count", len(ids))),
	)
	defer span.End()
	return deleteByIDs(ctx, r.db, "products", storage.EntityProduct, ids)
}

func (r *ProductRepository) ExistsByID(ctx context.Context, id shared.ID) (bool, error) {
	return existsByID(ctx, r.db, "products", id)
}

func (r *ProductRepository) FindAvailableFor(ctx context.Context, d calendar.Date) ([]product.Rentable, error) {
	ctx, span := r.tracer.Start(ctx, "products.find_available_for",
		trace.WithAttributes(attribute.String("date", d.String())),
	)
	defer span.End()

	return queryProducts(ctx, r.db, `
		SELECT `+productColumns+` FROM products
		WHERE NOT `+containsPredicate+`
		ORDER BY created_at, id
	`, d.Time())
}

func (r *ProductRepository) FindReservedDuring(ctx context.Context, p calendar.Period) ([]product.Rentable, error) {
	ctx, span := r.tracer.Start(ctx, "products.find_reserved_during",
		trace.WithAttributes(attribute.String("period", p.String())),
	)
	defer span.End()

	return queryProducts(ctx, r.db, `
		SELECT `+productColumns+` FROM products
		WHERE `+overlapPredicate+`
		ORDER BY created_at, id
	`, p.StartDate().Time(), p.EndDate().Time())
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (productRecord, error) {
	var rec productRecord
	err := row.Scan(
		&rec.ID,
		&rec.Kind,
		&rec.RentPrice,
		&rec.Color,
		&rec.Model,
		&rec.Fabric,
		&rec.ImagePath,
		&rec.IsPickedUp,
		&rec.ReservationPeriods,
	)
	return rec, err
}

func queryProducts(ctx context.Context, q queryer, query string, args ...interface{}) ([]product.Rentable, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []product.Rentable
	for rows.Next() {
		rec, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p, err := productFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// deleteByIDs deletes every row of ids or none, reporting the missing ones.
func deleteByIDs(ctx context.Context, db *sql.DB, table, entity string, ids []shared.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return withTx(ctx, db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM `+table+` WHERE id = ANY($1::uuid[]) FOR UPDATE`,
			pq.Array(shared.IDStrings(ids)),
		)
		if err != nil {
			return fmt.Errorf("lock %s: %w", table, err)
		}
		found := map[shared.ID]bool{}
		for rows.Next() {
			var id shared.ID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("scan id: %w", err)
			}
			found[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		var missing []shared.ID
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return shared.NewNotFoundError(entity, missing...)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE id = ANY($1::uuid[])`,
			pq.Array(shared.IDStrings(ids)),
		); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
		return nil
	})
}

func existsByID(ctx context.Context, q queryer, table string, id shared.ID) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s existence: %w", table, err)
	}
	return exists, nil
}
