package repository

import (
	"context"
	"sync"
	"testing"

	"storefront-catalog/internal/apperror"
	"storefront-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func listAll(t *testing.T, repo ProductRepository, filter domain.ProductFilter) *domain.ProductPage {
	t.Helper()
	page, err := repo.FindAll(context.Background(), filter,
		domain.SortOptions{Field: domain.SortByPrice, Direction: domain.SortAsc},
		domain.Pagination{Page: 1, Limit: domain.MaxLimit},
	)
	require.NoError(t, err)
	return page
}

func TestProductRepository_DuplicateSlugIsConflict(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Phones")
	repo := NewProductRepository(testPool)

	insertTestProduct(t, newTestProduct(category.ID, "iphone-15", 999, 3))

	err := repo.Create(context.Background(), newTestProduct(category.ID, "iphone-15", 899, 1))
	require.Error(t, err)

	classified := apperror.FromUnknown(err)
	assert.Equal(t, apperror.KindConflict, classified.Kind())
	assert.Equal(t, 409, classified.StatusCode())
}

func TestProductRepository_UnknownCategoryIsBusinessLogic(t *testing.T) {
	resetDB(t)
	repo := NewProductRepository(testPool)

	err := repo.Create(context.Background(), newTestProduct(uuid.New(), "orphan", 10, 1))
	require.Error(t, err)

	assert.Equal(t, apperror.KindBusinessLogic, apperror.FromUnknown(err).Kind())
}

func TestProductRepository_FindAll_PriceRangeComposition(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Range")
	repo := NewProductRepository(testPool)

	insertTestProduct(t, newTestProduct(category.ID, "cheap", 50, 1))
	mid := insertTestProduct(t, newTestProduct(category.ID, "mid", 150, 1))
	insertTestProduct(t, newTestProduct(category.ID, "pricey", 250, 1))

	page := listAll(t, repo, domain.ProductFilter{MinPrice: decPtr(100), MaxPrice: decPtr(200)})

	require.Len(t, page.Items, 1)
	assert.Equal(t, mid.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestProductRepository_FindAll_Pagination(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Paging")
	repo := NewProductRepository(testPool)

	for i := 0; i < 25; i++ {
		insertTestProduct(t, newTestProduct(category.ID, "page-"+uuid.NewString(), float64(i+1), 1))
	}

	page, err := repo.FindAll(context.Background(), domain.ProductFilter{},
		domain.SortOptions{Field: domain.SortByPrice, Direction: domain.SortAsc},
		domain.Pagination{Page: 3, Limit: 10},
	)
	require.NoError(t, err)

	assert.Len(t, page.Items, 5)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.Page)
	assert.True(t, page.Items[0].Price.Equal(decimal.NewFromInt(21)))
}

func TestProductRepository_FindAll_EmptyResult(t *testing.T) {
	resetDB(t)
	repo := NewProductRepository(testPool)

	page := listAll(t, repo, domain.ProductFilter{Brand: strPtr("nobody")})

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
}

func TestProductRepository_FindAll_Filters(t *testing.T) {
	resetDB(t)
	phones := createTestCategory(t, "Phones")
	laptops := createTestCategory(t, "Laptops")
	repo := NewProductRepository(testPool)

	pixel := newTestProduct(phones.ID, "pixel-8", 699, 4)
	pixel.Brand = strPtr("Google")
	pixel.Tags = []string{"android", "5g"}
	pixel.Title = "Pixel 8 Pro"
	insertTestProduct(t, pixel)

	galaxy := newTestProduct(phones.ID, "galaxy-s24", 799, 0)
	galaxy.Brand = strPtr("Samsung")
	galaxy.Tags = []string{"android"}
	insertTestProduct(t, galaxy)

	macbook := newTestProduct(laptops.ID, "macbook-air", 1199, 2)
	macbook.Brand = strPtr("Apple")
	macbook.Tags = []string{"macos"}
	macbook.Description = "Thin laptop with a great pixel density"
	insertTestProduct(t, macbook)

	retired := newTestProduct(laptops.ID, "retired", 10, 1)
	retired.IsActive = false
	insertTestProduct(t, retired)

	t.Run("category", func(t *testing.T) {
		page := listAll(t, repo, domain.ProductFilter{CategoryID: &phones.ID})
		assert.Equal(t, 2, page.Total)
	})

	t.Run("brand is case-insensitive exact", func(t *testing.T) {
		page := listAll(t, repo, domain.ProductFilter{Brand: strPtr("google")})
		require.Len(t, page.Items, 1)
		assert.Equal(t, pixel.ID, page.Items[0].ID)

		page = listAll(t, repo, domain.ProductFilter{Brand: strPtr("goo")})
		assert.Empty(t, page.Items)
	})

	t.Run("tags match any", func(t *testing.T) {
		page := listAll(t, repo, domain.ProductFilter{Tags: []string{"5g", "macos"}})
		assert.Equal(t, 2, page.Total)
	})

	t.Run("search covers title and description", func(t *testing.T) {
		page := listAll(t, repo, domain.ProductFilter{Search: strPtr("PIXEL")})
		assert.Equal(t, 2, page.Total)
	})

	t.Run("in stock", func(t *testing.T) {
		page := listAll(t, repo, domain.ProductFilter{InStock: boolPtr(true)})
		assert.Equal(t, 2, page.Total)
		for _, item := range page.Items {
			assert.True(t, item.InStock)
			assert.Greater(t, item.StockQuantity, 0)
		}
	})

	t.Run("inactive hidden by default", func(t *testing.T) {
		page := listAll(t, repo, domain.ProductFilter{})
		assert.Equal(t, 3, page.Total)

		page = listAll(t, repo, domain.ProductFilter{IsActive: boolPtr(false)})
		require.Len(t, page.Items, 1)
		assert.Equal(t, retired.ID, page.Items[0].ID)
	})

	t.Run("filters compose", func(t *testing.T) {
		page := listAll(t, repo, domain.ProductFilter{
			CategoryID: &phones.ID,
			InStock:    boolPtr(true),
			Tags:       []string{"android"},
		})
		require.Len(t, page.Items, 1)
		assert.Equal(t, pixel.ID, page.Items[0].ID)
	})
}

func TestProductRepository_FindAll_SortByTitleDesc(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Sort")
	repo := NewProductRepository(testPool)

	for _, title := range []string{"Banana", "Apple", "Cherry"} {
		p := newTestProduct(category.ID, "sort-"+title, 5, 1)
		p.Title = title
		insertTestProduct(t, p)
	}

	page, err := repo.FindAll(context.Background(), domain.ProductFilter{},
		domain.SortOptions{Field: domain.SortByTitle, Direction: domain.SortDesc},
		domain.Pagination{Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Cherry", page.Items[0].Title)
	assert.Equal(t, "Apple", page.Items[2].Title)
}

func TestProductRepository_FindByID(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Lookup")
	repo := NewProductRepository(testPool)
	product := insertTestProduct(t, newTestProduct(category.ID, "lookup", 42, 1))

	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Slug, found.Slug)
	require.NotNil(t, found.Category)
	assert.Equal(t, category.Name, found.Category.Name)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_FindBySlug(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Slug")
	repo := NewProductRepository(testPool)
	product := insertTestProduct(t, newTestProduct(category.ID, "by-slug", 42, 1))

	found, err := repo.FindBySlug(context.Background(), "by-slug")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = repo.FindBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_SoftAndHardDelete(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Delete")
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	soft := insertTestProduct(t, newTestProduct(category.ID, "soft", 10, 1))
	hard := insertTestProduct(t, newTestProduct(category.ID, "hard", 20, 1))

	deleted, err := repo.SoftDelete(ctx, soft.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// soft-deleted products leave listings but stay addressable
	page := listAll(t, repo, domain.ProductFilter{})
	require.Len(t, page.Items, 1)
	assert.Equal(t, hard.ID, page.Items[0].ID)

	found, err := repo.FindByID(ctx, soft.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	deleted, err = repo.HardDelete(ctx, hard.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindByID(ctx, hard.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	deleted, err = repo.HardDelete(ctx, hard.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.SoftDelete(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestProductRepository_UpdateStockDepletion(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Stock")
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := insertTestProduct(t, newTestProduct(category.ID, "depleting", 30, 5))

	updated, err := repo.UpdateStock(ctx, product.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.StockQuantity)
	assert.False(t, updated.InStock)

	page := listAll(t, repo, domain.ProductFilter{InStock: boolPtr(true)})
	assert.Empty(t, page.Items)

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, found.InStock)

	_, err = repo.UpdateStock(ctx, uuid.New(), 3)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_ConcurrentViewIncrements(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Views")
	repo := NewProductRepository(testPool)
	product := insertTestProduct(t, newTestProduct(category.ID, "popular", 30, 5))

	const viewers = 40
	var wg sync.WaitGroup
	errs := make(chan error, viewers)
	for i := 0; i < viewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementViewCount(context.Background(), product.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("increment failed: %v", err)
	}

	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(viewers), found.ViewCount)

	ok, err := repo.IncrementViewCount(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductRepository_Update(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Update")
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := insertTestProduct(t, newTestProduct(category.ID, "editable", 30, 5))
	_, err := repo.IncrementViewCount(ctx, product.ID)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, product.ID, domain.ProductChanges{
		Title: strPtr("Renamed"),
		Price: decPtr(45.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("45.5")))
	assert.Equal(t, int64(1), found.ViewCount)
	assert.Equal(t, product.Slug, found.Slug)

	_, err = repo.Update(ctx, uuid.New(), domain.ProductChanges{Title: strPtr("ghost")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_UpdateLeavesUnsetColumns(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Partial")
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := newTestProduct(category.ID, "partial", 30, 7)
	product.Images = []string{"https://cdn.example.com/one.jpg"}
	product = insertTestProduct(t, product)

	// stock and images move after the caller read the row
	_, err := repo.UpdateStock(ctx, product.ID, 0)
	require.NoError(t, err)
	_, err = repo.UpdateImages(ctx, product.ID, []string{"https://cdn.example.com/two.jpg"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, product.ID, domain.ProductChanges{Title: strPtr("Retitled")})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.StockQuantity)
	assert.False(t, updated.InStock)
	assert.Equal(t, []string{"https://cdn.example.com/two.jpg"}, updated.Images)

	restocked, err := repo.Update(ctx, product.ID, domain.ProductChanges{StockQuantity: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, restocked.StockQuantity)
	assert.True(t, restocked.InStock)
	assert.Equal(t, "Retitled", restocked.Title)
}

func TestProductRepository_UpdateRatingAndImages(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Rating")
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := insertTestProduct(t, newTestProduct(category.ID, "rated", 30, 5))

	rated, err := repo.UpdateRating(ctx, product.ID, 4.5, 12)
	require.NoError(t, err)
	assert.Equal(t, 4.5, rated.Rating)
	assert.Equal(t, 12, rated.ReviewCount)

	images := []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}
	withImages, err := repo.UpdateImages(ctx, product.ID, images)
	require.NoError(t, err)
	assert.Equal(t, images, withImages.Images)

	cleared, err := repo.UpdateImages(ctx, product.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Images)

	_, err = repo.UpdateRating(ctx, uuid.New(), 1, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_Search(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Search")
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	low := newTestProduct(category.ID, "phone-low", 100, 1)
	low.Title = "Budget phone"
	low.Rating = 3.1
	insertTestProduct(t, low)

	high := newTestProduct(category.ID, "phone-high", 900, 1)
	high.Title = "Flagship phone"
	high.Rating = 4.8
	insertTestProduct(t, high)

	branded := newTestProduct(category.ID, "case", 15, 1)
	branded.Title = "Case"
	branded.Brand = strPtr("PhoneGear")
	branded.Rating = 4.8
	branded.ViewCount = 100
	insertTestProduct(t, branded)

	soldOut := newTestProduct(category.ID, "phone-out", 500, 0)
	soldOut.Title = "Sold out phone"
	soldOut.Rating = 5
	insertTestProduct(t, soldOut)

	results, err := repo.Search(ctx, "phone", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, branded.ID, results[0].ID)
	assert.Equal(t, high.ID, results[1].ID)
	assert.Equal(t, low.ID, results[2].ID)

	limited, err := repo.Search(ctx, "phone", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := repo.Search(ctx, "tablet", 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestProductRepository_SlugExists(t *testing.T) {
	resetDB(t)
	category := createTestCategory(t, "Slugs")
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := insertTestProduct(t, newTestProduct(category.ID, "taken", 30, 5))

	exists, err := repo.SlugExists(ctx, "taken", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SlugExists(ctx, "taken", &product.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.SlugExists(ctx, "free", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCategoryRepository(t *testing.T) {
	resetDB(t)
	repo := NewCategoryRepository(testPool)
	ctx := context.Background()

	beta := createTestCategory(t, "Beta")
	alpha := createTestCategory(t, "Alpha")

	categories, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, alpha.ID, categories[0].ID)
	assert.Equal(t, beta.ID, categories[1].ID)

	assert.Equal(t, beta.Slug, categories[1].Slug)

	exists, err := repo.Exists(ctx, alpha.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)

	duplicate := *alpha
	duplicate.ID = uuid.New()
	err = repo.Create(ctx, &duplicate)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.FromUnknown(err).Kind())
}
