package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

// ProductRepository provides in-memory product storage and the combined-group table
type ProductRepository struct {
	mu          sync.RWMutex
	products    []entities.Product
	productsMap map[entities.ProductID]int
	groups      map[string]*entities.CombinedGroup
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{
		products:    make([]entities.Product, 0, expectedProducts),
		productsMap: make(map[entities.ProductID]int, expectedProducts),
		groups:      make(map[string]*entities.CombinedGroup),
	}
}

// Verify interface compliance
var (
	_ repositories.ProductRepository       = (*ProductRepository)(nil)
	_ repositories.CombinedGroupRepository = (*ProductRepository)(nil)
)

// LoadProducts loads products into the repository
func (r *ProductRepository) LoadProducts(products []*entities.Product) error {
	for _, p := range products {
		r.AddProduct(*p)
	}
	return nil
}

// AddProduct adds or replaces a product. A product carrying a combined group id is also
// appended to that group's members.
func (r *ProductRepository) AddProduct(product entities.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, exists := r.productsMap[product.ID]; exists {
		r.products[idx] = product
	} else {
		r.productsMap[product.ID] = len(r.products)
		r.products = append(r.products, product)
	}

	if product.CombinedGroupID != "" {
		r.addMemberLocked(product.CombinedGroupID, product.ID)
	}
}

// LoadGroups loads explicit combined groups, merging with memberships declared on products
func (r *ProductRepository) LoadGroups(groups []*entities.CombinedGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range groups {
		for _, m := range g.Members {
			r.addMemberLocked(g.ID, m)
		}
	}
	return nil
}

func (r *ProductRepository) addMemberLocked(groupID string, product entities.ProductID) {
	group, ok := r.groups[groupID]
	if !ok {
		group = &entities.CombinedGroup{ID: groupID}
		r.groups[groupID] = group
	}
	for _, m := range group.Members {
		if m == product {
			return
		}
	}
	group.Members = append(group.Members, product)
}

// GetProduct returns the product for an id
func (r *ProductRepository) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.productsMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrProductNotFound, id)
	}
	product := r.products[index]
	return &product, nil
}

// GetProducts returns the products for the given ids, in the same order
func (r *ProductRepository) GetProducts(ctx context.Context, ids []entities.ProductID) ([]*entities.Product, error) {
	products := make([]*entities.Product, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// ListProducts returns all products sorted by id
func (r *ProductRepository) ListProducts(ctx context.Context) ([]*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*entities.Product, 0, len(r.products))
	for i := range r.products {
		product := r.products[i]
		products = append(products, &product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// ListGroups returns every combined group sorted by id
func (r *ProductRepository) ListGroups(ctx context.Context) ([]*entities.CombinedGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]*entities.CombinedGroup, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, &entities.CombinedGroup{
			ID:      g.ID,
			Members: append([]entities.ProductID(nil), g.Members...),
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}
