package repository

import (
	"context"
	"strings"

	"product-importer/models"

	"gorm.io/gorm"
)

const stagingBatchSize = 500

// ProductRepository defines data-access operations for products, including
// the bulk merge used by ingestion.
type ProductRepository interface {
	// Upsert is the interactive create path: it overwrites an existing
	// product with the same normalized sku. Ingestion never goes through
	// here.
	Upsert(ctx context.Context, p *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	Patch(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	// BulkInsertSkipDuplicates merges staging records into products,
	// skipping skus that already exist. Atomic: all non-conflicting rows
	// commit or none do.
	BulkInsertSkipDuplicates(ctx context.Context, records []models.StagingRecord) error
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

// NormalizeSKU trims and lower-cases a sku for comparison and storage.
func NormalizeSKU(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

func (r *GormProductRepository) Upsert(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.SKU = NormalizeSKU(p.SKU)

	var existing models.Product
	err := r.db.WithContext(ctx).Where("sku = ?", p.SKU).First(&existing).Error
	switch {
	case err == nil:
		existing.Name = p.Name
		existing.Description = p.Description
		existing.Active = p.Active
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, err
	}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.SKU != "" {
		query = query.Where("sku ILIKE ?", "%"+filter.SKU+"%")
	}
	if filter.Name != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Description != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Description+"%")
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&products).Error

	return products, total, err
}

func (r *GormProductRepository) Patch(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}

	if err := r.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormProductRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

// BulkInsertSkipDuplicates stages the records in a connection-scoped temp
// table and merges them with ON CONFLICT DO NOTHING, leaving existing rows
// byte-for-byte unmodified. The temp table is dropped on commit and
// rollback alike, so concurrent runs never see each other's staging data.
func (r *GormProductRepository) BulkInsertSkipDuplicates(ctx context.Context, records []models.StagingRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`CREATE TEMP TABLE tmp_products (sku TEXT, name TEXT, description TEXT, active BOOLEAN) ON COMMIT DROP`,
		).Error; err != nil {
			return err
		}

		for start := 0; start < len(records); start += stagingBatchSize {
			end := start + stagingBatchSize
			if end > len(records) {
				end = len(records)
			}
			if err := insertStagingBatch(tx, records[start:end]); err != nil {
				return err
			}
		}

		return tx.Exec(
			`INSERT INTO products (sku, name, description, active)
			 SELECT sku, name, description, active FROM tmp_products
			 ON CONFLICT (sku) DO NOTHING`,
		).Error
	})
}

func insertStagingBatch(tx *gorm.DB, batch []models.StagingRecord) error {
	var sb strings.Builder
	sb.WriteString("INSERT INTO tmp_products (sku, name, description, active) VALUES ")
	args := make([]interface{}, 0, len(batch)*4)
	for i, rec := range batch {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, rec.SKU, rec.Name, rec.Description, rec.Active)
	}
	return tx.Exec(sb.String(), args...).Error
}
