package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/ledgerline/brandboard/internal/domain"
)

// CatalogUC covers the small amount of catalog maintenance the batch
// jobs need around them: merging brands and retiring products. Neither
// touches the summary tables; the next rebuild picks the changes up.
type CatalogUC struct {
	Products   domain.ProductRepo
	Brands     domain.BrandRepo
	Categories domain.CategoryRepo
}

// AssignCategory places a brand under a category, creating the category on
// first use. Existing summary rows keep the old category until a rebuild.
func (uc *CatalogUC) AssignCategory(ctx context.Context, brandName, categoryName string) error {
	b, err := uc.Brands.FindByName(ctx, brandName)
	if err != nil {
		return err
	}
	c, err := uc.Categories.GetOrCreate(ctx, categoryName)
	if err != nil {
		return err
	}
	b.CategoryID = &c.ID
	if err := uc.Brands.Save(ctx, b); err != nil {
		return err
	}
	log.Info().Str("brand", brandName).Str("category", categoryName).Msg("brand categorised")
	return nil
}

// MergeBrands moves every product from one brand onto another and
// returns the number moved. Both brands must already exist.
func (uc *CatalogUC) MergeBrands(ctx context.Context, fromName, toName string) (int64, error) {
	from, err := uc.Brands.FindByName(ctx, fromName)
	if err != nil {
		return 0, err
	}
	to, err := uc.Brands.FindByName(ctx, toName)
	if err != nil {
		return 0, err
	}
	moved, err := uc.Products.ReassignBrand(ctx, from.ID, to.ID)
	if err != nil {
		return 0, err
	}
	log.Info().Str("from", fromName).Str("to", toName).Int64("moved", moved).Msg("products reassigned")
	return moved, nil
}

// RemoveProduct deletes a product and all its dependent rows by code.
func (uc *CatalogUC) RemoveProduct(ctx context.Context, code string) error {
	p, err := uc.Products.FindByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return uc.Products.DeleteCascade(ctx, p.ID)
}
