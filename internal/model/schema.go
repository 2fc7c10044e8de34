package model

// Field is a semantic attribute of an inventory record, independent of the
// column name the store happens to use for it
type Field string

const (
	FieldID          Field = "id"
	FieldTitle       Field = "title"
	FieldAircraft    Field = "aircraft"
	FieldBrand       Field = "brand"
	FieldModel       Field = "model"
	FieldClass       Field = "class"
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
	FieldLocation    Field = "location"
	FieldDeparture   Field = "departure"
	FieldCapacity    Field = "capacity"
	FieldPrice       Field = "price"
	FieldCurrency    Field = "currency"
	FieldAvailable   Field = "available"
	FieldImage       Field = "image"
	FieldLength      Field = "length"
	FieldDuration    Field = "duration"
	FieldVehicle     Field = "vehicle"
	FieldRange       Field = "range"
)

// CategorySchema maps semantic fields to the candidate column names of one
// inventory table, in lookup priority order
type CategorySchema struct {
	Table  string             `yaml:"table" json:"table"`
	Fields map[Field][]string `yaml:"fields" json:"fields"`
}

// Columns returns the aliases for f, or nil
func (c CategorySchema) Columns(f Field) []string {
	return c.Fields[f]
}

// Schema is the field-alias table for every category
type Schema map[ServiceType]CategorySchema

// Category returns the schema for t and whether it is defined
func (s Schema) Category(t ServiceType) (CategorySchema, bool) {
	c, ok := s[t]
	return c, ok
}

var (
	availableAliases = []string{"is_available", "available", "is_active", "active"}
	imageAliases     = []string{"image_url", "photo_url", "thumbnail_url", "image"}
	currencyAliases  = []string{"currency", "currency_code"}
	capacityAliases  = []string{"capacity", "max_passengers", "passenger_capacity", "seats"}
)

// DefaultSchema returns the built-in alias table. A YAML file can replace
// entries per category (see config.LoadSchema).
func DefaultSchema() Schema {
	return Schema{
		ServiceEmptyLegs: {
			Table: "empty_legs",
			Fields: map[Field][]string{
				FieldID:          {"id"},
				FieldAircraft:    {"aircraft", "aircraft_type", "aircraft_model"},
				FieldOrigin:      {"from_location", "origin", "departure_airport", "from_city"},
				FieldDestination: {"to_location", "destination", "arrival_airport", "to_city"},
				FieldDeparture:   {"departure_time", "departure_date", "date"},
				FieldCapacity:    capacityAliases,
				FieldPrice:       {"price", "asking_price", "seat_price"},
				FieldCurrency:    currencyAliases,
				FieldAvailable:   availableAliases,
				FieldImage:       imageAliases,
			},
		},
		ServiceJets: {
			Table: "jets",
			Fields: map[Field][]string{
				FieldID:        {"id"},
				FieldModel:     {"model", "aircraft_model", "name"},
				FieldClass:     {"category", "jet_class", "size_category"},
				FieldLocation:  {"base_location", "home_base", "location", "base_airport"},
				FieldCapacity:  capacityAliases,
				FieldPrice:     {"hourly_rate", "price_per_hour", "price"},
				FieldCurrency:  currencyAliases,
				FieldAvailable: availableAliases,
				FieldImage:     imageAliases,
				FieldRange:     {"range_nm", "range_km", "range"},
			},
		},
		ServiceHelicopters: {
			Table: "helicopters",
			Fields: map[Field][]string{
				FieldID:        {"id"},
				FieldModel:     {"model", "helicopter_model", "name"},
				FieldClass:     {"category", "engine_type"},
				FieldLocation:  {"base_location", "location", "heliport"},
				FieldCapacity:  capacityAliases,
				FieldPrice:     {"hourly_rate", "price_per_hour", "price"},
				FieldCurrency:  currencyAliases,
				FieldAvailable: availableAliases,
				FieldImage:     imageAliases,
				FieldRange:     {"range_km", "range_nm", "range"},
			},
		},
		ServiceCars: {
			Table: "luxury_cars",
			Fields: map[Field][]string{
				FieldID:        {"id"},
				FieldBrand:     {"brand", "make"},
				FieldModel:     {"model", "name"},
				FieldClass:     {"category", "car_type", "body_type"},
				FieldLocation:  {"location", "city", "pickup_location"},
				FieldCapacity:  {"seats", "capacity", "max_passengers"},
				FieldPrice:     {"daily_rate", "price_per_day", "price"},
				FieldCurrency:  currencyAliases,
				FieldAvailable: availableAliases,
				FieldImage:     imageAliases,
			},
		},
		ServiceYachts: {
			Table: "yachts",
			Fields: map[Field][]string{
				FieldID:        {"id"},
				FieldTitle:     {"name", "yacht_name"},
				FieldClass:     {"type", "yacht_type"},
				FieldLength:    {"length_m", "length_meters", "length"},
				FieldLocation:  {"location", "marina", "home_port", "base_port"},
				FieldCapacity:  {"guest_capacity", "max_guests", "capacity"},
				FieldPrice:     {"daily_rate", "price_per_day", "weekly_rate", "price"},
				FieldCurrency:  currencyAliases,
				FieldAvailable: availableAliases,
				FieldImage:     imageAliases,
			},
		},
		ServiceExperiences: {
			Table: "experiences",
			Fields: map[Field][]string{
				FieldID:        {"id"},
				FieldTitle:     {"title", "name"},
				FieldClass:     {"category", "experience_type"},
				FieldLocation:  {"destination", "location", "city"},
				FieldCapacity:  {"max_guests", "capacity", "group_size"},
				FieldPrice:     {"price", "price_per_person", "starting_price"},
				FieldCurrency:  currencyAliases,
				FieldDuration:  {"duration", "duration_days", "duration_hours"},
				FieldAvailable: availableAliases,
				FieldImage:     imageAliases,
			},
		},
		ServiceTransfers: {
			Table: "transfers",
			Fields: map[Field][]string{
				FieldID:          {"id"},
				FieldOrigin:      {"from_location", "origin", "pickup_location"},
				FieldDestination: {"to_location", "destination", "dropoff_location"},
				FieldVehicle:     {"vehicle_type", "vehicle", "car_model"},
				FieldDuration:    {"duration_minutes", "duration"},
				FieldCapacity:    capacityAliases,
				FieldPrice:       {"price", "fixed_price"},
				FieldCurrency:    currencyAliases,
				FieldAvailable:   availableAliases,
				FieldImage:       imageAliases,
			},
		},
	}
}
