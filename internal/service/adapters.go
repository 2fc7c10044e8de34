package service

import (
	"context"
	"log"
	"time"

	"travelsearch/internal/metrics"
	"travelsearch/internal/model"
)

// InventoryStore is the read-only filtered query capability over the
// category tables
type InventoryStore interface {
	QueryInventory(ctx context.Context, category model.CategorySchema, filter model.InventoryFilter) ([]model.Record, error)
}

// AdapterInput is what every adapter derives its filter from
type AdapterInput struct {
	Intent *model.Intent
	Window *model.DateRange
}

type filterBuilder func(in AdapterInput) model.InventoryFilter

// Adapter queries the inventory of one category. Query never fails: any
// store error or panic becomes an empty list.
type Adapter struct {
	serviceType model.ServiceType
	category    model.CategorySchema
	store       InventoryStore
	pageSize    int
	build       filterBuilder
}

// NewAdapters creates the seven category adapters in display order
func NewAdapters(store InventoryStore, schema model.Schema, pageSize int) []*Adapter {
	builders := map[model.ServiceType]filterBuilder{
		model.ServiceEmptyLegs:   emptyLegFilter,
		model.ServiceJets:        baseLocationFilter,
		model.ServiceHelicopters: baseLocationFilter,
		model.ServiceCars:        placeFilter,
		model.ServiceYachts:      placeFilter,
		model.ServiceExperiences: placeFilter,
		model.ServiceTransfers:   routeFilter,
	}

	adapters := make([]*Adapter, 0, len(model.ServiceTypes))
	for _, st := range model.ServiceTypes {
		category, ok := schema.Category(st)
		if !ok {
			log.Printf("[adapter] no schema for %s, category will stay empty", st)
		}
		adapters = append(adapters, &Adapter{
			serviceType: st,
			category:    category,
			store:       store,
			pageSize:    pageSize,
			build:       builders[st],
		})
	}
	return adapters
}

// ServiceType returns the category this adapter serves
func (a *Adapter) ServiceType() model.ServiceType {
	return a.serviceType
}

// Filter builds the category's store filter
func (a *Adapter) Filter(in AdapterInput) model.InventoryFilter {
	if in.Intent == nil {
		in.Intent = &model.Intent{}
	}
	f := a.build(in)
	f.MinCapacity = in.Intent.Passengers
	f.MaxPrice = in.Intent.Budget
	f.AvailableOnly = true
	f.Limit = a.pageSize
	return f
}

// Query runs the category query with fault isolation
func (a *Adapter) Query(ctx context.Context, in AdapterInput) (records []model.Record) {
	start := time.Now()
	category := string(a.serviceType)

	defer func() {
		metrics.AdapterDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			log.Printf("[adapter] %s panicked: %v", category, r)
			metrics.AdapterQueriesTotal.WithLabelValues(category, "panic").Inc()
			records = []model.Record{}
		}
	}()

	if a.category.Table == "" {
		metrics.AdapterQueriesTotal.WithLabelValues(category, "error").Inc()
		return []model.Record{}
	}

	rows, err := a.store.QueryInventory(ctx, a.category, a.Filter(in))
	if err != nil {
		log.Printf("[adapter] %s query failed: %v", category, err)
		metrics.AdapterQueriesTotal.WithLabelValues(category, "error").Inc()
		return []model.Record{}
	}

	metrics.AdapterQueriesTotal.WithLabelValues(category, "ok").Inc()
	if rows == nil {
		rows = []model.Record{}
	}
	return rows
}

// emptyLegFilter matches both endpoints and the departure window, earliest first
func emptyLegFilter(in AdapterInput) model.InventoryFilter {
	return model.InventoryFilter{
		Origin:      in.Intent.FromLocation,
		Destination: in.Intent.ToLocation,
		Window:      in.Window,
		OrderBy:     model.FieldDeparture,
	}
}

// baseLocationFilter finds aircraft based near the departure point
func baseLocationFilter(in AdapterInput) model.InventoryFilter {
	return model.InventoryFilter{Location: in.Intent.FromLocation}
}

// placeFilter searches around the destination, or the origin when there is none
func placeFilter(in AdapterInput) model.InventoryFilter {
	return model.InventoryFilter{Location: in.Intent.PlaceHint()}
}

func routeFilter(in AdapterInput) model.InventoryFilter {
	return model.InventoryFilter{
		Origin:      in.Intent.FromLocation,
		Destination: in.Intent.ToLocation,
	}
}
