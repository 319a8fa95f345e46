package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seanmccall/folio/internal/database"
	"github.com/seanmccall/folio/internal/models"
)

type CertificationRepository struct {
	orderedTable
}

func NewCertificationRepository(db *database.DB) *CertificationRepository {
	return &CertificationRepository{orderedTable{pool: db.Pool, table: "certifications"}}
}

const certificationColumns = `id, title, issuer, credential_url, issued_at, "order", created_at, updated_at`

func scanCertificationRow(scanner rowScanner) (*models.Certification, error) {
	var cert models.Certification
	var credentialURL *string
	var issuedAt *time.Time

	err := scanner.Scan(
		&cert.ID, &cert.Title, &cert.Issuer, &credentialURL, &issuedAt,
		&cert.Order, &cert.CreatedAt, &cert.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if credentialURL != nil {
		cert.CredentialURL = *credentialURL
	}
	cert.IssuedAt = issuedAt

	return &cert, nil
}

// List returns all certifications in display order
func (r *CertificationRepository) List(ctx context.Context) ([]*models.Certification, error) {
	query := `SELECT ` + certificationColumns + ` FROM certifications ORDER BY "order", created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	certs := make([]*models.Certification, 0)
	for rows.Next() {
		cert, err := scanCertificationRow(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return certs, nil
}

func (r *CertificationRepository) GetByID(ctx context.Context, id string) (*models.Certification, error) {
	query := `SELECT ` + certificationColumns + ` FROM certifications WHERE id = $1`

	return scanCertificationRow(r.pool.QueryRow(ctx, query, id))
}

// Create appends the new certification at the end of the display order
func (r *CertificationRepository) Create(ctx context.Context, cert *models.Certification) (*models.Certification, error) {
	cert.ID = uuid.New().String()
	now := time.Now()
	cert.CreatedAt = now
	cert.UpdatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer tx.Rollback(ctx)

	order, err := r.nextOrder(ctx, tx)
	if err != nil {
		return nil, err
	}
	cert.Order = order

	query := `
		INSERT INTO certifications (id, title, issuer, credential_url, issued_at, "order", created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + certificationColumns

	created, err := scanCertificationRow(tx.QueryRow(ctx, query,
		cert.ID, cert.Title, cert.Issuer, nullable(cert.CredentialURL), cert.IssuedAt,
		cert.Order, cert.CreatedAt, cert.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return created, nil
}

func (r *CertificationRepository) Update(ctx context.Context, id string, cert *models.Certification) (*models.Certification, error) {
	query := `
		UPDATE certifications SET title = $1, issuer = $2, credential_url = $3, issued_at = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + certificationColumns

	return scanCertificationRow(r.pool.QueryRow(ctx, query,
		cert.Title, cert.Issuer, nullable(cert.CredentialURL), cert.IssuedAt, time.Now(), id,
	))
}

func (r *CertificationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM certifications WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
