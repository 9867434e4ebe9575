package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// Scenario file names inside a scenario directory. Groups and overrides are optional.
const (
	ProductsFile     = "products.csv"
	StockFile        = "stock.csv"
	MovementsFile    = "movements.csv"
	GroupsFile       = "groups.csv"
	OverridesFile    = "minimum_stock.csv"
	movementTimeForm = "2006-01-02"
)

// Override is a manual minimum stock loaded from a scenario
type Override struct {
	ProductID entities.ProductID
	BranchID  entities.BranchID
	Value     entities.Quantity
}

// Scenario is everything read from a scenario directory
type Scenario struct {
	Products  []*entities.Product
	Stock     []*entities.StockPosition
	Movements []*entities.Movement
	Groups    []*entities.CombinedGroup
	Overrides []Override
}

// Loader handles loading scenario data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads every scenario file of a directory
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	var (
		s   Scenario
		err error
	)
	if s.Products, err = l.LoadProducts(filepath.Join(dir, ProductsFile)); err != nil {
		return nil, err
	}
	if s.Stock, err = l.LoadStock(filepath.Join(dir, StockFile)); err != nil {
		return nil, err
	}
	if s.Movements, err = l.LoadMovements(filepath.Join(dir, MovementsFile)); err != nil {
		return nil, err
	}
	if s.Groups, err = l.LoadGroups(filepath.Join(dir, GroupsFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if s.Overrides, err = l.LoadOverrides(filepath.Join(dir, OverridesFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return &s, nil
}

// LoadProducts loads products from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	expectedHeader := []string{"product_id", "description", "catalog_group", "sales_multiple", "combined_group", "unit_price"}
	records, err := readRecords(filename, "products", expectedHeader)
	if err != nil {
		return nil, err
	}

	products := make([]*entities.Product, 0, len(records))
	for i, record := range records {
		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// LoadStock loads stock positions from a CSV file
func (l *Loader) LoadStock(filename string) ([]*entities.StockPosition, error) {
	expectedHeader := []string{"product_id", "branch_id", "on_hand", "reserved"}
	records, err := readRecords(filename, "stock", expectedHeader)
	if err != nil {
		return nil, err
	}

	positions := make([]*entities.StockPosition, 0, len(records))
	for i, record := range records {
		onHand, err := parseQuantity("on_hand", record[2])
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		reserved, err := parseQuantity("reserved", record[3])
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}

		position, err := entities.NewStockPosition(entities.ProductID(record[0]), entities.BranchID(record[1]), onHand, reserved)
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		positions = append(positions, position)
	}
	return positions, nil
}

// LoadMovements loads stock movements from a CSV file
func (l *Loader) LoadMovements(filename string) ([]*entities.Movement, error) {
	expectedHeader := []string{"movement_id", "product_id", "branch_id", "kind", "quantity", "unit_price", "occurred_at"}
	records, err := readRecords(filename, "movements", expectedHeader)
	if err != nil {
		return nil, err
	}

	movements := make([]*entities.Movement, 0, len(records))
	for i, record := range records {
		movement, err := parseMovement(record)
		if err != nil {
			return nil, fmt.Errorf("movements CSV row %d: %w", i+2, err)
		}
		movements = append(movements, movement)
	}
	return movements, nil
}

// LoadGroups loads combined-group memberships, one product per row
func (l *Loader) LoadGroups(filename string) ([]*entities.CombinedGroup, error) {
	expectedHeader := []string{"group_id", "product_id"}
	records, err := readRecords(filename, "groups", expectedHeader)
	if err != nil {
		return nil, err
	}

	var order []string
	members := make(map[string][]entities.ProductID)
	for _, record := range records {
		id := strings.TrimSpace(record[0])
		if _, ok := members[id]; !ok {
			order = append(order, id)
		}
		members[id] = append(members[id], entities.ProductID(strings.TrimSpace(record[1])))
	}

	groups := make([]*entities.CombinedGroup, 0, len(order))
	for _, id := range order {
		group, err := entities.NewCombinedGroup(id, members[id])
		if err != nil {
			return nil, fmt.Errorf("groups CSV: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// LoadOverrides loads manual minimum stocks from a CSV file
func (l *Loader) LoadOverrides(filename string) ([]Override, error) {
	expectedHeader := []string{"product_id", "branch_id", "manual_override"}
	records, err := readRecords(filename, "minimum stock", expectedHeader)
	if err != nil {
		return nil, err
	}

	overrides := make([]Override, 0, len(records))
	for i, record := range records {
		value, err := parseQuantity("manual_override", record[2])
		if err != nil {
			return nil, fmt.Errorf("minimum stock CSV row %d: %w", i+2, err)
		}
		overrides = append(overrides, Override{
			ProductID: entities.ProductID(record[0]),
			BranchID:  entities.BranchID(record[1]),
			Value:     value,
		})
	}
	return overrides, nil
}

// readRecords returns the data rows of a file after checking its header and row widths.
// A missing file keeps os.ErrNotExist in the error chain.
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header", kind)
	}

	// Validate header
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseProduct(record []string) (*entities.Product, error) {
	multiple := 1
	if raw := strings.TrimSpace(record[3]); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid sales_multiple: %s", record[3])
		}
		multiple = m
	}

	price := decimal.Zero
	if raw := strings.TrimSpace(record[5]); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid unit_price: %s", record[5])
		}
		price = p
	}

	return entities.NewProduct(
		entities.ProductID(strings.TrimSpace(record[0])),
		record[1],
		record[2],
		multiple,
		strings.TrimSpace(record[4]),
		price,
	)
}

func parseMovement(record []string) (*entities.Movement, error) {
	kind, err := entities.ParseMovementKind(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, err
	}

	quantity, err := parseQuantity("quantity", record[4])
	if err != nil {
		return nil, err
	}

	price := decimal.Zero
	if raw := strings.TrimSpace(record[5]); raw != "" {
		if price, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("invalid unit_price: %s", record[5])
		}
	}

	occurredAt, err := parseTime(strings.TrimSpace(record[6]))
	if err != nil {
		return nil, fmt.Errorf("invalid occurred_at format: %s (expected YYYY-MM-DD or RFC3339)", record[6])
	}

	return entities.NewMovement(
		strings.TrimSpace(record[0]),
		entities.ProductID(strings.TrimSpace(record[1])),
		entities.BranchID(strings.TrimSpace(record[2])),
		kind,
		quantity,
		price,
		occurredAt,
	)
}

func parseQuantity(field, raw string) (entities.Quantity, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, raw)
	}
	return entities.Quantity(v), nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(movementTimeForm, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
