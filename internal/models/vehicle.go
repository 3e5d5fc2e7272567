package models

// UnitSystem is the fuel efficiency unit selected by the user.
type UnitSystem string

const (
	UnitKmPerGallon   UnitSystem = "km/gal"
	UnitKmPerLiter    UnitSystem = "km/l"
	UnitLitersPer100K UnitSystem = "l/100km"
)

// Theme is the UI theme preference stored with the vehicle.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// VehicleSettings is the singleton settings document for the tracked vehicle.
type VehicleSettings struct {
	Brand               string     `bson:"brand" json:"brand"`
	Model               string     `bson:"model" json:"model"`
	Year                string     `bson:"year" json:"year"`
	Plate               string     `bson:"plate" json:"plate"`
	CurrentOdometer     int        `bson:"current_odometer" json:"currentOdometer"` // in kilometers
	FuelType            string     `bson:"fuel_type" json:"fuelType"`
	OilTypeEngine       string     `bson:"oil_type_engine" json:"oilTypeEngine"`
	OilTypeTransmission string     `bson:"oil_type_transmission" json:"oilTypeTransmission"`
	UnitSystem          UnitSystem `bson:"unit_system" json:"unitSystem"`
	PhotoURL            string     `bson:"photo_url,omitempty" json:"photoUrl,omitempty"`
	Theme               Theme      `bson:"theme" json:"theme"`
}

// DefaultVehicle returns the settings used before onboarding.
func DefaultVehicle() VehicleSettings {
	return VehicleSettings{
		FuelType:   "Gasolina",
		UnitSystem: UnitKmPerGallon,
		Theme:      ThemeDark,
	}
}

// IsValidUnitSystem checks if a unit system is known
func IsValidUnitSystem(u UnitSystem) bool {
	switch u {
	case UnitKmPerGallon, UnitKmPerLiter, UnitLitersPer100K:
		return true
	default:
		return false
	}
}
