package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

var (
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.VesselRepository   = (*VesselRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// LocationRepo ubicaciones; nombre único sin distinguir mayúsculas (índice sobre lower(name)).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `INSERT INTO locations (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.q.Exec(ctx, query, l.ID, l.Name, l.CreatedAt, l.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert location", err)
	}
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM locations WHERE id = $1`, id).Scan(
		&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get location", err)
	}
	return &l, nil
}

// UpsertByName el DO UPDATE no cambia datos; solo permite que RETURNING devuelva la fila existente.
func (r *LocationRepo) UpsertByName(ctx context.Context, name string) (*entity.Location, error) {
	query := `
		INSERT INTO locations (id, name, created_at, updated_at) VALUES ($1, $2, $3, $3)
		ON CONFLICT ((lower(name))) DO UPDATE SET updated_at = locations.updated_at
		RETURNING id, name, created_at, updated_at`
	var l entity.Location
	err := r.q.QueryRow(ctx, query, ulid.New(), name, time.Now()).Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, wrapErr("upsert location", err)
	}
	return &l, nil
}

func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at, updated_at FROM locations ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list locations", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// VesselRepo buques.
type VesselRepo struct {
	q Querier
}

// NewVesselRepository construye el adaptador de buques.
func NewVesselRepository(q Querier) *VesselRepo {
	return &VesselRepo{q: q}
}

func (r *VesselRepo) Create(ctx context.Context, v *entity.Vessel) error {
	query := `INSERT INTO vessels (id, name, imo, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, v.ID, v.Name, v.IMO, v.CreatedAt, v.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert vessel", err)
	}
	return nil
}

func (r *VesselRepo) GetByID(ctx context.Context, id string) (*entity.Vessel, error) {
	var v entity.Vessel
	err := r.q.QueryRow(ctx, `SELECT id, name, imo, created_at, updated_at FROM vessels WHERE id = $1`, id).Scan(
		&v.ID, &v.Name, &v.IMO, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get vessel", err)
	}
	return &v, nil
}

func (r *VesselRepo) UpsertByName(ctx context.Context, name string) (*entity.Vessel, error) {
	query := `
		INSERT INTO vessels (id, name, created_at, updated_at) VALUES ($1, $2, $3, $3)
		ON CONFLICT ((lower(name))) DO UPDATE SET updated_at = vessels.updated_at
		RETURNING id, name, imo, created_at, updated_at`
	var v entity.Vessel
	err := r.q.QueryRow(ctx, query, ulid.New(), name, time.Now()).Scan(&v.ID, &v.Name, &v.IMO, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, wrapErr("upsert vessel", err)
	}
	return &v, nil
}

func (r *VesselRepo) List(ctx context.Context, limit, offset int) ([]*entity.Vessel, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, imo, created_at, updated_at FROM vessels ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list vessels", err)
	}
	defer rows.Close()
	var list []*entity.Vessel
	for rows.Next() {
		var v entity.Vessel
		if err := rows.Scan(&v.ID, &v.Name, &v.IMO, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vessel: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.Status,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id, "get user by id")
}

// GetByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE lower(email) = lower($1) LIMIT 1`, email, "get user by email")
}

func (r *UserRepo) findOne(ctx context.Context, where, arg, op string) (*entity.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, status, created_at, updated_at
		FROM users ` + where
	var u entity.User
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// ProductRepo catálogo de productos; SKU único sin distinguir mayúsculas.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, sku, material_code, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.MaterialCode, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Name, p.SKU, p.MaterialCode, p.CreatedAt, p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert product", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	return p, nil
}

func (r *ProductRepo) UpsertBySKU(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	query := `
		INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT ((lower(sku))) DO UPDATE
		SET name = EXCLUDED.name, material_code = EXCLUDED.material_code, updated_at = EXCLUDED.updated_at
		RETURNING ` + productColumns
	out, err := scanProduct(r.q.QueryRow(ctx, query, p.ID, p.Name, p.SKU, p.MaterialCode, p.UpdatedAt))
	if err != nil {
		return nil, wrapErr("upsert product", err)
	}
	return out, nil
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY sku LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
