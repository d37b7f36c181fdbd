package domain_test

import (
	"testing"

	"github.com/obutuz/Miley/internal/domain"
	"github.com/obutuz/Miley/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryAndProductSlugs(t *testing.T) {
	gdb := testutil.NewDB(t)

	category := domain.Category{Name: "Garden Tools"}
	require.NoError(t, gdb.Create(&category).Error)
	assert.Equal(t, "garden-tools", category.Slug)
	assert.Equal(t, "/shop/category/garden-tools/", category.AbsoluteURL())

	product := domain.Product{CategoryID: category.ID, Name: "Steel Rake", Price: 12.5, Available: true}
	require.NoError(t, gdb.Create(&product).Error)
	assert.Equal(t, "steel-rake", product.Slug)
	assert.Equal(t, "/shop/product/1/steel-rake/", product.AbsoluteURL())
}

func TestCategorySlugUnique(t *testing.T) {
	gdb := testutil.NewDB(t)

	require.NoError(t, gdb.Create(&domain.Category{Name: "Books"}).Error)
	assert.Error(t, gdb.Create(&domain.Category{Name: "Books"}).Error)
}
