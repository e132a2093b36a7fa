package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zeus1411/aquastore/internal/domain/product"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 库存变更必须是单条原子UPDATE（SET stock = stock - ?），
//    绝不在应用层读改写——并发下单时读改写会丢更新导致超卖
// 2. 扣减在SQL的WHERE里校验库存充足，RowsAffected=0即失败
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// FindByID 根据ID查找商品（含规格列表）
func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	err := getDB(ctx, r.db).Preload("Variants").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}
	return toProductEntity(&model), nil
}

// UpdateStock 原子更新商品库存和销量
// 扣减(stockDelta<0)时WHERE校验stock充足；销量减少时在0处截断。
func (r *productRepository) UpdateStock(ctx context.Context, id uint, stockDelta, soldDelta int) error {
	db := getDB(ctx, r.db)

	query := db.Model(&ProductModel{}).Where("id = ?", id)
	if stockDelta < 0 {
		query = query.Where("stock >= ?", -stockDelta)
	}

	result := query.Updates(map[string]interface{}{
		"stock":      gorm.Expr("stock + ?", stockDelta),
		"sold_count": gorm.Expr("GREATEST(sold_count + ?, 0)", soldDelta),
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}
	if result.RowsAffected == 0 {
		// 商品不存在或库存不足，区分后返回准确错误
		var count int64
		if err := db.Model(&ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "更新库存失败")
		}
		if count == 0 {
			return product.ErrProductNotFound
		}
		return product.ErrInsufficientStock
	}
	return nil
}

// UpdateVariantStock 原子更新规格库存和销量，语义同UpdateStock
func (r *productRepository) UpdateVariantStock(ctx context.Context, variantID uint, stockDelta, soldDelta int) error {
	db := getDB(ctx, r.db)

	query := db.Model(&VariantModel{}).Where("id = ?", variantID)
	if stockDelta < 0 {
		query = query.Where("stock >= ?", -stockDelta)
	}

	result := query.Updates(map[string]interface{}{
		"stock":      gorm.Expr("stock + ?", stockDelta),
		"sold_count": gorm.Expr("GREATEST(sold_count + ?, 0)", soldDelta),
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新规格库存失败")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&VariantModel{}).Where("id = ?", variantID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "更新规格库存失败")
		}
		if count == 0 {
			return product.ErrVariantNotFound
		}
		return product.ErrInsufficientStock
	}
	return nil
}

// toProductEntity GORM模型 → 领域实体
func toProductEntity(model *ProductModel) *product.Product {
	variants := make([]product.Variant, len(model.Variants))
	for i, v := range model.Variants {
		variants[i] = product.Variant{
			ID:           v.ID,
			ProductID:    v.ProductID,
			SKU:          v.SKU,
			OptionValues: v.OptionValues,
			Price:        v.Price,
			Stock:        v.Stock,
			SoldCount:    v.SoldCount,
			IsActive:     v.IsActive,
		}
	}

	return &product.Product{
		ID:          model.ID,
		Name:        model.Name,
		SKU:         model.SKU,
		Price:       model.Price,
		Stock:       model.Stock,
		SoldCount:   model.SoldCount,
		Discount:    model.Discount,
		Status:      product.Status(model.Status),
		Image:       model.Image,
		Description: model.Description,
		Variants:    variants,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
