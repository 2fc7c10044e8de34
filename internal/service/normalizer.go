package service

import (
	"fmt"
	"strings"

	"travelsearch/internal/model"
)

const placeholder = "TBD"

var tabTitles = map[model.ServiceType]string{
	model.ServiceEmptyLegs:   "Empty Legs",
	model.ServiceJets:        "Private Jets",
	model.ServiceHelicopters: "Helicopters",
	model.ServiceCars:        "Luxury Cars",
	model.ServiceYachts:      "Yachts",
	model.ServiceExperiences: "Experiences",
	model.ServiceTransfers:   "Transfers",
}

var priceUnits = map[model.ServiceType]string{
	model.ServiceEmptyLegs:   "per flight",
	model.ServiceJets:        "per hour",
	model.ServiceHelicopters: "per hour",
	model.ServiceCars:        "per day",
	model.ServiceYachts:      "per day",
	model.ServiceExperiences: "per person",
	model.ServiceTransfers:   "per transfer",
}

// Normalizer maps category-native records to uniform display tabs
type Normalizer struct {
	schema          model.Schema
	defaultCurrency string
}

// NewNormalizer creates a normalizer reading records through schema
func NewNormalizer(schema model.Schema, defaultCurrency string) *Normalizer {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &Normalizer{schema: schema, defaultCurrency: defaultCurrency}
}

// Normalize builds one tab per non-empty category in display order.
// The results are only read.
func (n *Normalizer) Normalize(results *model.SearchResults) []model.DisplayTab {
	tabs := []model.DisplayTab{}
	if results == nil {
		return tabs
	}

	for _, st := range model.ServiceTypes {
		rows := results.For(st)
		if len(rows) == 0 {
			continue
		}
		category, _ := n.schema.Category(st)

		items := make([]model.DisplayItem, 0, len(rows))
		for i, rec := range rows {
			items = append(items, n.item(st, category, i, rec))
		}
		tabs = append(tabs, model.DisplayTab{
			ID:    string(st),
			Title: tabTitles[st],
			Count: len(items),
			Items: items,
		})
	}
	return tabs
}

func (n *Normalizer) item(st model.ServiceType, c model.CategorySchema, index int, rec model.Record) model.DisplayItem {
	text := func(f model.Field) string {
		if v, ok := rec.Text(c.Columns(f)); ok {
			return v
		}
		return placeholder
	}
	optional := func(f model.Field) string {
		v, _ := rec.Text(c.Columns(f))
		return v
	}

	item := model.DisplayItem{
		ID:           optional(model.FieldID),
		Currency:     n.defaultCurrency,
		PriceUnit:    priceUnits[st],
		Availability: true,
		ImageURL:     optional(model.FieldImage),
	}
	if item.ID == "" {
		item.ID = fmt.Sprintf("%s-%d", st, index+1)
	}
	if price, ok := rec.Number(c.Columns(model.FieldPrice)); ok {
		item.Price = &price
	}
	if cur := optional(model.FieldCurrency); cur != "" {
		item.Currency = strings.ToUpper(cur)
	}
	if avail, ok := rec.Bool(c.Columns(model.FieldAvailable)); ok {
		item.Availability = avail
	}

	switch st {
	case model.ServiceEmptyLegs:
		departure := n.departure(c, rec)
		item.Title = fmt.Sprintf("%s - %s to %s", text(model.FieldAircraft), text(model.FieldOrigin), text(model.FieldDestination))
		item.Subtitle = "Departs " + departure
		item.Details = []model.DetailField{
			{Label: "From", Value: text(model.FieldOrigin)},
			{Label: "To", Value: text(model.FieldDestination)},
			{Label: "Departure", Value: departure},
			{Label: "Seats", Value: text(model.FieldCapacity)},
		}

	case model.ServiceJets, model.ServiceHelicopters:
		item.Title = text(model.FieldModel)
		item.Subtitle = joinPresent(" based in ", optional(model.FieldClass), optional(model.FieldLocation))
		item.Details = []model.DetailField{
			{Label: "Category", Value: text(model.FieldClass)},
			{Label: "Base", Value: text(model.FieldLocation)},
			{Label: "Passengers", Value: text(model.FieldCapacity)},
			{Label: "Range", Value: text(model.FieldRange)},
		}

	case model.ServiceCars:
		item.Title = carTitle(optional(model.FieldBrand), optional(model.FieldModel))
		item.Subtitle = joinPresent(" in ", optional(model.FieldClass), optional(model.FieldLocation))
		item.Details = []model.DetailField{
			{Label: "Type", Value: text(model.FieldClass)},
			{Label: "Location", Value: text(model.FieldLocation)},
			{Label: "Seats", Value: text(model.FieldCapacity)},
		}

	case model.ServiceYachts:
		length := optional(model.FieldLength)
		if length != "" {
			length += "m"
		}
		item.Title = text(model.FieldTitle)
		item.Subtitle = joinPresent(" ", length, optional(model.FieldClass))
		item.Details = []model.DetailField{
			{Label: "Type", Value: text(model.FieldClass)},
			{Label: "Length", Value: orPlaceholder(length)},
			{Label: "Marina", Value: text(model.FieldLocation)},
			{Label: "Guests", Value: text(model.FieldCapacity)},
		}

	case model.ServiceExperiences:
		item.Title = text(model.FieldTitle)
		item.Subtitle = optional(model.FieldLocation)
		item.Details = []model.DetailField{
			{Label: "Category", Value: text(model.FieldClass)},
			{Label: "Destination", Value: text(model.FieldLocation)},
			{Label: "Duration", Value: text(model.FieldDuration)},
			{Label: "Group size", Value: text(model.FieldCapacity)},
		}

	case model.ServiceTransfers:
		item.Title = fmt.Sprintf("%s to %s", text(model.FieldOrigin), text(model.FieldDestination))
		item.Subtitle = optional(model.FieldVehicle)
		item.Details = []model.DetailField{
			{Label: "Vehicle", Value: text(model.FieldVehicle)},
			{Label: "Duration", Value: text(model.FieldDuration)},
			{Label: "Passengers", Value: text(model.FieldCapacity)},
		}
	}

	return item
}

func (n *Normalizer) departure(c model.CategorySchema, rec model.Record) string {
	if t, ok := rec.Time(c.Columns(model.FieldDeparture)); ok {
		if t.Hour() == 0 && t.Minute() == 0 {
			return t.Format("02 Jan 2006")
		}
		return t.Format("02 Jan 2006 15:04")
	}
	if v, ok := rec.Text(c.Columns(model.FieldDeparture)); ok {
		return v
	}
	return placeholder
}

func carTitle(brand, carModel string) string {
	title := strings.TrimSpace(brand + " " + carModel)
	return orPlaceholder(title)
}

// joinPresent joins the non-empty parts with sep
func joinPresent(sep string, parts ...string) string {
	var present []string
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, sep)
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
