package repositories

import (
	"context"
	"errors"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// ErrProductNotFound is returned when a product id is unknown
var ErrProductNotFound = errors.New("product not found")

// ProductRepository provides access to product configuration
type ProductRepository interface {
	GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error)
	GetProducts(ctx context.Context, ids []entities.ProductID) ([]*entities.Product, error)
	ListProducts(ctx context.Context) ([]*entities.Product, error)
}

// CombinedGroupRepository provides the full product to combined-group table
type CombinedGroupRepository interface {
	ListGroups(ctx context.Context) ([]*entities.CombinedGroup, error)
}
