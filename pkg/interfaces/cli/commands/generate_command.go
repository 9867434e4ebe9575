package commands

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/shared"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Products   int     // Number of products to generate
	GroupShare float64 // Share of products placed in combined groups (0-1)
	Days       int     // Days of sales history ending today
	Seed       int64   // Random seed for reproducible generation
	OutputDir  string  // Output directory for generated files
}

// GenerateCommand writes a random but plausible scenario directory
type GenerateCommand struct {
	rt     *Runtime
	config GenerateConfig
	rand   *rand.Rand
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(rt *Runtime, config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Products <= 0 {
		config.Products = 50
	}
	if config.Days <= 0 {
		config.Days = 400
	}

	return &GenerateCommand{
		rt:     rt,
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

var catalogGroups = []string{"FILTERS", "BRAKES", "IGNITION", "LIGHTING", "BELTS", "FLUIDS"}

// demandProfile drives the sales of one product
type demandProfile struct {
	dailyRate float64
	peakMonth time.Month
	amplitude float64 // seasonal swing, 0 means flat
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("an output directory is required")
	}
	network, err := cmd.rt.Network()
	if err != nil {
		return err
	}

	scenario := &csv.Scenario{}
	profiles := cmd.generateProducts(scenario)
	cmd.generateGroups(scenario)
	recent := cmd.generateMovements(scenario, network, profiles)
	cmd.generateStock(scenario, network, recent)

	if err := csv.WriteScenario(cmd.config.OutputDir, scenario); err != nil {
		return err
	}

	cmd.rt.Logger.Info().
		Str("dir", cmd.config.OutputDir).
		Int("products", len(scenario.Products)).
		Int("groups", len(scenario.Groups)).
		Int("movements", len(scenario.Movements)).
		Msg("scenario generated")
	return nil
}

// generateProducts creates the catalog, most products sold by the unit
func (cmd *GenerateCommand) generateProducts(scenario *csv.Scenario) map[entities.ProductID]demandProfile {
	profiles := make(map[entities.ProductID]demandProfile, cmd.config.Products)
	multiples := []int{2, 4, 6, 12}

	for i := 0; i < cmd.config.Products; i++ {
		group := catalogGroups[cmd.rand.Intn(len(catalogGroups))]
		id := entities.ProductID(fmt.Sprintf("%s-%04d", group[:3], i+1))

		multiple := 1
		if cmd.rand.Float64() < 0.3 {
			multiple = multiples[cmd.rand.Intn(len(multiples))]
		}
		price := decimal.NewFromFloat(2 + cmd.rand.Float64()*198).Round(2)

		scenario.Products = append(scenario.Products, &entities.Product{
			ID:            id,
			Description:   fmt.Sprintf("%s part %04d", group, i+1),
			CatalogGroup:  group,
			SalesMultiple: multiple,
			UnitPrice:     price,
		})

		// Long-tailed popularity: a few fast movers, many slow ones
		profile := demandProfile{dailyRate: 0.02 + cmd.rand.ExpFloat64()*0.6}
		if cmd.rand.Float64() < 0.4 {
			profile.peakMonth = time.Month(1 + cmd.rand.Intn(12))
			profile.amplitude = 0.3 + cmd.rand.Float64()*0.6
		}
		profiles[id] = profile
	}
	return profiles
}

// generateGroups links runs of products from the same catalog group into combined groups of 2-4
func (cmd *GenerateCommand) generateGroups(scenario *csv.Scenario) {
	target := int(float64(len(scenario.Products)) * cmd.config.GroupShare)
	byCatalog := make(map[string][]*entities.Product)
	for _, p := range scenario.Products {
		byCatalog[p.CatalogGroup] = append(byCatalog[p.CatalogGroup], p)
	}

	grouped := 0
	for _, catalog := range catalogGroups {
		members := byCatalog[catalog]
		for len(members) >= 2 && grouped < target {
			size := min(2+cmd.rand.Intn(3), len(members))
			id := fmt.Sprintf("G%04d", len(scenario.Groups)+1)
			group := &entities.CombinedGroup{ID: id}
			for _, p := range members[:size] {
				p.CombinedGroupID = id
				group.Members = append(group.Members, p.ID)
			}
			scenario.Groups = append(scenario.Groups, group)
			grouped += size
			members = members[size:]
		}
	}
}

// generateMovements writes daily sales per destination and periodic receipts at the origin.
// It returns the sales of the last 90 days per product for stock sizing.
func (cmd *GenerateCommand) generateMovements(
	scenario *csv.Scenario,
	network *entities.Network,
	profiles map[entities.ProductID]demandProfile,
) map[entities.ProductID]entities.Quantity {
	today := shared.StartOfDay(cmd.rt.clock()())
	first := today.AddDate(0, 0, -cmd.config.Days)
	recentStart := today.AddDate(0, 0, -90)
	recent := make(map[entities.ProductID]entities.Quantity)

	branchWeight := make(map[entities.BranchID]float64, len(network.Priority))
	for _, b := range network.Priority {
		branchWeight[b] = 0.4 + cmd.rand.Float64()*1.2
	}

	seq := 0
	add := func(product *entities.Product, branch entities.BranchID, kind entities.MovementKind, qty entities.Quantity, at time.Time) {
		seq++
		scenario.Movements = append(scenario.Movements, &entities.Movement{
			ID:         fmt.Sprintf("M%08d", seq),
			ProductID:  product.ID,
			BranchID:   branch,
			Kind:       kind,
			Quantity:   qty,
			UnitPrice:  product.UnitPrice,
			OccurredAt: at,
		})
	}

	for day := first; day.Before(today); day = day.AddDate(0, 0, 1) {
		for _, product := range scenario.Products {
			profile := profiles[product.ID]
			rate := profile.dailyRate * seasonality(profile, day.Month())

			for _, branch := range network.Priority {
				expected := rate * branchWeight[branch]
				qty := cmd.poisson(expected)
				if qty == 0 {
					continue
				}
				at := day.Add(time.Duration(8+cmd.rand.Intn(10)) * time.Hour)
				add(product, branch, entities.OutboundSale, qty, at)
				if !day.Before(recentStart) {
					recent[product.ID] += qty
				}
			}

			if day.Weekday() == time.Monday && cmd.rand.Float64() < 0.5 {
				receipt := entities.Quantity(math.Ceil(rate*float64(len(network.Priority))*7)) + 1
				add(product, network.Origin, entities.Inbound, receipt, day.Add(6*time.Hour))
			}
		}
	}
	return recent
}

// generateStock sizes origin stock around recent demand, sometimes short, and leaves
// destinations with little on hand
func (cmd *GenerateCommand) generateStock(
	scenario *csv.Scenario,
	network *entities.Network,
	recent map[entities.ProductID]entities.Quantity,
) {
	for _, product := range scenario.Products {
		sold := float64(recent[product.ID])
		onHand := entities.Quantity(sold * (0.2 + cmd.rand.Float64()*1.3))
		reserved := entities.Quantity(0)
		if onHand > 10 && cmd.rand.Float64() < 0.3 {
			reserved = entities.Quantity(cmd.rand.Int63n(int64(onHand / 5)))
		}
		scenario.Stock = append(scenario.Stock, &entities.StockPosition{
			ProductID: product.ID, BranchID: network.Origin, OnHand: onHand, Reserved: reserved,
		})

		perBranch := sold / float64(max(1, len(network.Priority))) / 3
		for _, branch := range network.Priority {
			if cmd.rand.Float64() < 0.25 {
				continue // no stock row: zero on hand
			}
			scenario.Stock = append(scenario.Stock, &entities.StockPosition{
				ProductID: product.ID, BranchID: branch,
				OnHand: entities.Quantity(perBranch * cmd.rand.Float64()),
			})
		}
	}
}

// poisson draws a small Poisson count with Knuth's method
func (cmd *GenerateCommand) poisson(lambda float64) entities.Quantity {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	for p := cmd.rand.Float64(); p > limit; p *= cmd.rand.Float64() {
		k++
	}
	return entities.Quantity(k)
}

func seasonality(profile demandProfile, month time.Month) float64 {
	if profile.amplitude == 0 {
		return 1
	}
	distance := float64(month - profile.peakMonth)
	return 1 + profile.amplitude*math.Cos(2*math.Pi*distance/12)
}
