package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"github.com/vendsight/vendsight-backend/pkg/redis"
)

// KPIData are the headline numbers for the dashboard.
type KPIData struct {
	TotalRevenue          float64 `json:"total_revenue"`
	TotalVends            int     `json:"total_vends"`
	AvgRevenuePerVend     float64 `json:"avg_revenue_per_vend"`
	ActiveMachines        int     `json:"active_machines"`
	ActiveLocations       int     `json:"active_locations"`
	DigitalPaymentPercent float64 `json:"digital_payment_percent"`
}

type RegionRevenue struct {
	Region  string  `json:"region"`
	Revenue float64 `json:"revenue"`
	Vends   int     `json:"vends"`
}

type ProductTypeBreakdown struct {
	ProductType string  `json:"product_type"`
	Revenue     float64 `json:"revenue"`
	Vends       int     `json:"vends"`
}

type PaymentBreakdown struct {
	PaymentCategory string  `json:"payment_category"`
	Revenue         float64 `json:"revenue"`
	TranCount       int     `json:"tran_count"`
}

type TopLocation struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Region       string  `json:"region"`
	LocationType string  `json:"location_type"`
	Revenue      float64 `json:"revenue"`
	Vends        int     `json:"vends"`
	AvgPerVend   float64 `json:"avg_per_vend"`
	MachineCount int     `json:"machine_count"`
}

type TopMachine struct {
	ID           uint    `json:"id"`
	SerialNumber string  `json:"serial_number"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Location     string  `json:"location"`
	Revenue      float64 `json:"revenue"`
	Vends        int     `json:"vends"`
}

type DiscountSummary struct {
	TwoTierPricing      float64 `json:"two_tier_pricing"`
	LoyaltyDiscount     float64 `json:"loyalty_discount"`
	PurchaseDiscount    float64 `json:"purchase_discount"`
	FreeProductDiscount float64 `json:"free_product_discount"`
	TotalDiscounts      float64 `json:"total_discounts"`
}

type LocationTypeAvg struct {
	LocationType  string  `json:"location_type"`
	AvgRevenue    float64 `json:"avg_revenue"`
	LocationCount int     `json:"location_count"`
}

// AnalyticsData is the full dashboard payload, computed in a single pass
// over the period's sales records.
type AnalyticsData struct {
	KPI                    KPIData                `json:"kpi"`
	RevenueByRegion        []RegionRevenue        `json:"revenue_by_region"`
	ProductTypes           []ProductTypeBreakdown `json:"product_types"`
	PaymentBreakdown       []PaymentBreakdown     `json:"payment_breakdown"`
	TopLocations           []TopLocation          `json:"top_locations"`
	TopMachines            []TopMachine           `json:"top_machines"`
	Discounts              DiscountSummary        `json:"discounts"`
	LocationTypeComparison []LocationTypeAvg      `json:"location_type_comparison"`
	Insights               []string               `json:"insights"`
}

const topEntityLimit = 20

type AnalyticsService interface {
	GetAnalytics(userID uint, periodStart, periodEnd string) (*AnalyticsData, error)
	InvalidateCache(userID uint)
}

type analyticsService struct {
	salesRepo    repository.SalesRepository
	regionRepo   repository.RegionRepository
	locationRepo repository.LocationRepository
	machineRepo  repository.MachineRepository
	cacheTTL     time.Duration
}

func NewAnalyticsService(
	salesRepo repository.SalesRepository,
	regionRepo repository.RegionRepository,
	locationRepo repository.LocationRepository,
	machineRepo repository.MachineRepository,
	cacheTTL time.Duration,
) AnalyticsService {
	return &analyticsService{
		salesRepo:    salesRepo,
		regionRepo:   regionRepo,
		locationRepo: locationRepo,
		machineRepo:  machineRepo,
		cacheTTL:     cacheTTL,
	}
}

func analyticsCacheKey(userID uint, periodStart, periodEnd string) string {
	return fmt.Sprintf("analytics:user:%d:%s:%s", userID, periodStart, periodEnd)
}

func (s *analyticsService) GetAnalytics(userID uint, periodStart, periodEnd string) (*AnalyticsData, error) {
	ctx := context.Background()
	cacheKey := analyticsCacheKey(userID, periodStart, periodEnd)

	if cached, ok := redis.CacheGet(ctx, cacheKey); ok {
		var data AnalyticsData
		if err := json.Unmarshal([]byte(cached), &data); err == nil {
			logger.Debug("Analytics cache hit", map[string]interface{}{
				"user_id": userID,
			})
			return &data, nil
		}
	}

	data, err := s.compute(userID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(data); err == nil {
		redis.CacheSet(ctx, cacheKey, string(payload), s.cacheTTL)
	}

	return data, nil
}

// InvalidateCache drops every cached analytics payload for the user.
// Called after each completed import.
func (s *analyticsService) InvalidateCache(userID uint) {
	redis.CacheDeletePattern(context.Background(), fmt.Sprintf("analytics:user:%d:*", userID))
}

func (s *analyticsService) compute(userID uint, periodStart, periodEnd string) (*AnalyticsData, error) {
	var (
		wg        sync.WaitGroup
		sales     []model.SalesRecord
		regions   []model.Region
		locations []model.Location
		machines  []model.Machine
		errs      [4]error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		sales, errs[0] = s.salesRepo.FindByUserID(userID, repository.SalesFilter{
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
	}()
	go func() {
		defer wg.Done()
		regions, errs[1] = s.regionRepo.FindByUserID(userID)
	}()
	go func() {
		defer wg.Done()
		locations, errs[2] = s.locationRepo.FindByUserID(userID)
	}()
	go func() {
		defer wg.Done()
		machines, errs[3] = s.machineRepo.FindByUserID(userID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			logger.Error("Failed to load analytics inputs", err, map[string]interface{}{
				"user_id": userID,
			})
			return nil, err
		}
	}

	regionByID := make(map[uint]*model.Region, len(regions))
	for i := range regions {
		regionByID[regions[i].ID] = &regions[i]
	}
	locationByID := make(map[uint]*model.Location, len(locations))
	for i := range locations {
		locationByID[locations[i].ID] = &locations[i]
	}
	machineByID := make(map[uint]*model.Machine, len(machines))
	for i := range machines {
		machineByID[machines[i].ID] = &machines[i]
	}

	// accumulators, all filled in one pass over sales
	var totalRevenue, digitalRevenue float64
	var totalVends int
	activeMachines := make(map[uint]bool)
	activeLocations := make(map[uint]bool)

	regionAgg := make(map[string]*RegionRevenue)
	productAgg := make(map[string]*ProductTypeBreakdown)
	paymentAgg := make(map[string]*PaymentBreakdown)

	type locationAccum struct {
		revenue  float64
		vends    int
		machines map[uint]bool
	}
	locationAgg := make(map[uint]*locationAccum)

	type machineAccum struct {
		revenue float64
		vends   int
	}
	machineAgg := make(map[uint]*machineAccum)

	type locTypeAccum struct {
		revenue   float64
		locations map[uint]bool
	}
	locTypeAgg := make(map[string]*locTypeAccum)

	var discounts DiscountSummary

	for i := range sales {
		rec := &sales[i]

		totalRevenue += rec.Amount
		totalVends += rec.VendCount

		if rec.MachineID != nil {
			activeMachines[*rec.MachineID] = true
		}
		if rec.LocationID != nil {
			activeLocations[*rec.LocationID] = true
		}

		if model.DigitalPaymentCategories[rec.PaymentCategory] {
			digitalRevenue += rec.Amount
		}

		regionName := "Unknown"
		if rec.RegionID != nil {
			if r, ok := regionByID[*rec.RegionID]; ok {
				regionName = r.Name
			}
		}
		rr := regionAgg[regionName]
		if rr == nil {
			rr = &RegionRevenue{Region: regionName}
			regionAgg[regionName] = rr
		}
		rr.Revenue += rec.Amount
		rr.Vends += rec.VendCount

		productType := rec.ProductType
		if productType == "" {
			productType = "Other"
		}
		pt := productAgg[productType]
		if pt == nil {
			pt = &ProductTypeBreakdown{ProductType: productType}
			productAgg[productType] = pt
		}
		pt.Revenue += rec.Amount
		pt.Vends += rec.VendCount

		category := string(rec.PaymentCategory)
		if category == "" {
			category = "other"
		}
		pb := paymentAgg[category]
		if pb == nil {
			pb = &PaymentBreakdown{PaymentCategory: category}
			paymentAgg[category] = pb
		}
		pb.Revenue += rec.Amount
		pb.TranCount += rec.TranCount

		if rec.LocationID != nil {
			la := locationAgg[*rec.LocationID]
			if la == nil {
				la = &locationAccum{machines: make(map[uint]bool)}
				locationAgg[*rec.LocationID] = la
			}
			la.revenue += rec.Amount
			la.vends += rec.VendCount
			if rec.MachineID != nil {
				la.machines[*rec.MachineID] = true
			}

			locType := "Not Assigned"
			if loc, ok := locationByID[*rec.LocationID]; ok && loc.LocationType != "" {
				locType = loc.LocationType
			}
			lt := locTypeAgg[locType]
			if lt == nil {
				lt = &locTypeAccum{locations: make(map[uint]bool)}
				locTypeAgg[locType] = lt
			}
			lt.revenue += rec.Amount
			lt.locations[*rec.LocationID] = true
		}

		if rec.MachineID != nil {
			ma := machineAgg[*rec.MachineID]
			if ma == nil {
				ma = &machineAccum{}
				machineAgg[*rec.MachineID] = ma
			}
			ma.revenue += rec.Amount
			ma.vends += rec.VendCount
		}

		discounts.TwoTierPricing += rec.TwoTierPricing
		discounts.LoyaltyDiscount += rec.LoyaltyDiscount
		discounts.PurchaseDiscount += rec.PurchaseDiscount
		discounts.FreeProductDiscount += rec.FreeProductDiscount
	}

	discounts.TotalDiscounts = discounts.TwoTierPricing + discounts.LoyaltyDiscount +
		discounts.PurchaseDiscount + discounts.FreeProductDiscount

	avgRevenuePerVend := 0.0
	if totalVends > 0 {
		avgRevenuePerVend = totalRevenue / float64(totalVends)
	}
	digitalPaymentPercent := 0.0
	if totalRevenue > 0 {
		digitalPaymentPercent = digitalRevenue / totalRevenue * 100
	}

	kpi := KPIData{
		TotalRevenue:          totalRevenue,
		TotalVends:            totalVends,
		AvgRevenuePerVend:     avgRevenuePerVend,
		ActiveMachines:        len(activeMachines),
		ActiveLocations:       len(activeLocations),
		DigitalPaymentPercent: digitalPaymentPercent,
	}

	revenueByRegion := make([]RegionRevenue, 0, len(regionAgg))
	for _, rr := range regionAgg {
		revenueByRegion = append(revenueByRegion, *rr)
	}
	sort.Slice(revenueByRegion, func(i, j int) bool {
		if revenueByRegion[i].Revenue != revenueByRegion[j].Revenue {
			return revenueByRegion[i].Revenue > revenueByRegion[j].Revenue
		}
		return revenueByRegion[i].Region < revenueByRegion[j].Region
	})

	productTypes := make([]ProductTypeBreakdown, 0, len(productAgg))
	for _, pt := range productAgg {
		productTypes = append(productTypes, *pt)
	}
	sort.Slice(productTypes, func(i, j int) bool {
		if productTypes[i].Revenue != productTypes[j].Revenue {
			return productTypes[i].Revenue > productTypes[j].Revenue
		}
		return productTypes[i].ProductType < productTypes[j].ProductType
	})

	paymentBreakdown := make([]PaymentBreakdown, 0, len(paymentAgg))
	for _, pb := range paymentAgg {
		paymentBreakdown = append(paymentBreakdown, *pb)
	}
	sort.Slice(paymentBreakdown, func(i, j int) bool {
		if paymentBreakdown[i].Revenue != paymentBreakdown[j].Revenue {
			return paymentBreakdown[i].Revenue > paymentBreakdown[j].Revenue
		}
		return paymentBreakdown[i].PaymentCategory < paymentBreakdown[j].PaymentCategory
	})

	topLocations := make([]TopLocation, 0, len(locationAgg))
	for locID, la := range locationAgg {
		entry := TopLocation{
			ID:           locID,
			Name:         "Unknown",
			Revenue:      la.revenue,
			Vends:        la.vends,
			MachineCount: len(la.machines),
		}
		if la.vends > 0 {
			entry.AvgPerVend = la.revenue / float64(la.vends)
		}
		if loc, ok := locationByID[locID]; ok {
			entry.Name = loc.Name
			entry.LocationType = loc.LocationType
			if loc.RegionID != nil {
				if r, ok := regionByID[*loc.RegionID]; ok {
					entry.Region = r.Name
				}
			}
		}
		topLocations = append(topLocations, entry)
	}
	sort.Slice(topLocations, func(i, j int) bool {
		if topLocations[i].Revenue != topLocations[j].Revenue {
			return topLocations[i].Revenue > topLocations[j].Revenue
		}
		return topLocations[i].Name < topLocations[j].Name
	})
	if len(topLocations) > topEntityLimit {
		topLocations = topLocations[:topEntityLimit]
	}

	topMachines := make([]TopMachine, 0, len(machineAgg))
	for machID, ma := range machineAgg {
		entry := TopMachine{
			ID:           machID,
			SerialNumber: "Unknown",
			Location:     "Unknown",
			Revenue:      ma.revenue,
			Vends:        ma.vends,
		}
		if mach, ok := machineByID[machID]; ok {
			entry.SerialNumber = mach.SerialNumber
			entry.Make = mach.Make
			entry.Model = mach.Model
			if mach.LocationID != nil {
				if loc, ok := locationByID[*mach.LocationID]; ok {
					entry.Location = loc.Name
				}
			}
		}
		topMachines = append(topMachines, entry)
	}
	sort.Slice(topMachines, func(i, j int) bool {
		if topMachines[i].Revenue != topMachines[j].Revenue {
			return topMachines[i].Revenue > topMachines[j].Revenue
		}
		return topMachines[i].SerialNumber < topMachines[j].SerialNumber
	})
	if len(topMachines) > topEntityLimit {
		topMachines = topMachines[:topEntityLimit]
	}

	locationTypeComparison := make([]LocationTypeAvg, 0, len(locTypeAgg))
	for locType, lt := range locTypeAgg {
		entry := LocationTypeAvg{
			LocationType:  locType,
			LocationCount: len(lt.locations),
		}
		if len(lt.locations) > 0 {
			entry.AvgRevenue = lt.revenue / float64(len(lt.locations))
		}
		locationTypeComparison = append(locationTypeComparison, entry)
	}
	sort.Slice(locationTypeComparison, func(i, j int) bool {
		if locationTypeComparison[i].AvgRevenue != locationTypeComparison[j].AvgRevenue {
			return locationTypeComparison[i].AvgRevenue > locationTypeComparison[j].AvgRevenue
		}
		return locationTypeComparison[i].LocationType < locationTypeComparison[j].LocationType
	})

	zeroRevenueMachines := 0
	for i := range machines {
		if _, ok := machineAgg[machines[i].ID]; !ok {
			zeroRevenueMachines++
		}
	}

	insights := buildInsights(
		revenueByRegion,
		digitalPaymentPercent,
		zeroRevenueMachines,
		locationTypeComparison,
		discounts,
		paymentBreakdown,
		totalRevenue,
	)

	return &AnalyticsData{
		KPI:                    kpi,
		RevenueByRegion:        revenueByRegion,
		ProductTypes:           productTypes,
		PaymentBreakdown:       paymentBreakdown,
		TopLocations:           topLocations,
		TopMachines:            topMachines,
		Discounts:              discounts,
		LocationTypeComparison: locationTypeComparison,
		Insights:               insights,
	}, nil
}

// buildInsights emits the dashboard callouts in a fixed order. Each one
// is conditional; an empty period produces an empty list.
func buildInsights(
	revenueByRegion []RegionRevenue,
	digitalPaymentPercent float64,
	zeroRevenueMachines int,
	locationTypeComparison []LocationTypeAvg,
	discounts DiscountSummary,
	paymentBreakdown []PaymentBreakdown,
	totalRevenue float64,
) []string {
	insights := []string{}

	if len(revenueByRegion) > 0 {
		insights = append(insights, fmt.Sprintf("Top region: %s with $%.0f in revenue",
			revenueByRegion[0].Region, revenueByRegion[0].Revenue))
	}

	if digitalPaymentPercent > 0 {
		insights = append(insights, fmt.Sprintf("%.1f%% of revenue comes from digital payments",
			digitalPaymentPercent))
	}

	if zeroRevenueMachines > 0 {
		insights = append(insights, fmt.Sprintf("%d machine(s) with zero revenue in this period",
			zeroRevenueMachines))
	}

	if len(locationTypeComparison) > 0 {
		insights = append(insights, fmt.Sprintf("Best location type: %s (avg $%.0f/location)",
			locationTypeComparison[0].LocationType, locationTypeComparison[0].AvgRevenue))
	}

	if discounts.TotalDiscounts > 0 {
		insights = append(insights, fmt.Sprintf("Total discounts/adjustments: $%.2f",
			discounts.TotalDiscounts))
	}

	var cashRevenue float64
	for _, pb := range paymentBreakdown {
		if pb.PaymentCategory == string(model.PaymentCash) {
			cashRevenue = pb.Revenue
			break
		}
	}
	if totalRevenue > 0 && cashRevenue > 0 {
		insights = append(insights, fmt.Sprintf("Cash is %.1f%% of revenue",
			cashRevenue/totalRevenue*100))
	}

	return insights
}
