package soil

import "github.com/stwalsh4118/agrireg/internal/models"

// Canonical soil types used as keys in the district table.
const (
	Red      = "Red"
	Black    = "Black"
	Clay     = "Clay"
	Alluvial = "Alluvial"
	Laterite = "Laterite"
	Sandy    = "Sandy"
	Loamy    = "Loamy"
)

// Baseline nutrient values (kg/ha for N, P, K) per district and soil type.
var districtSoils = map[string]map[string]models.SoilNutrients{
	"Kancheepuram": {
		Clay:     {Nitrogen: 60, Phosphorous: 40, Potassium: 95, PH: 6.8},
		Red:      {Nitrogen: 45, Phosphorous: 30, Potassium: 80, PH: 6.5},
		Alluvial: {Nitrogen: 70, Phosphorous: 45, Potassium: 110, PH: 7.2},
	},
	"Chennai": {
		Sandy:    {Nitrogen: 30, Phosphorous: 20, Potassium: 60, PH: 7.4},
		Alluvial: {Nitrogen: 65, Phosphorous: 42, Potassium: 105, PH: 7.3},
	},
	"Tiruvallur": {
		Red:   {Nitrogen: 48, Phosphorous: 32, Potassium: 85, PH: 6.6},
		Clay:  {Nitrogen: 62, Phosphorous: 38, Potassium: 100, PH: 7.0},
		Sandy: {Nitrogen: 28, Phosphorous: 18, Potassium: 55, PH: 7.5},
	},
	"Coimbatore": {
		Black: {Nitrogen: 75, Phosphorous: 35, Potassium: 140, PH: 7.8},
		Red:   {Nitrogen: 50, Phosphorous: 28, Potassium: 90, PH: 6.4},
		Loamy: {Nitrogen: 68, Phosphorous: 40, Potassium: 120, PH: 7.0},
	},
	"Madurai": {
		Black: {Nitrogen: 72, Phosphorous: 33, Potassium: 135, PH: 7.9},
		Red:   {Nitrogen: 46, Phosphorous: 27, Potassium: 82, PH: 6.7},
	},
	"Thanjavur": {
		Alluvial: {Nitrogen: 80, Phosphorous: 48, Potassium: 125, PH: 7.4},
		Clay:     {Nitrogen: 66, Phosphorous: 41, Potassium: 115, PH: 7.6},
	},
	"Tiruchirappalli": {
		Red:      {Nitrogen: 44, Phosphorous: 26, Potassium: 78, PH: 6.9},
		Black:    {Nitrogen: 70, Phosphorous: 31, Potassium: 130, PH: 8.0},
		Alluvial: {Nitrogen: 74, Phosphorous: 44, Potassium: 118, PH: 7.5},
	},
	"Salem": {
		Red:      {Nitrogen: 42, Phosphorous: 25, Potassium: 76, PH: 6.3},
		Laterite: {Nitrogen: 35, Phosphorous: 18, Potassium: 60, PH: 5.6},
	},
	"Vellore": {
		Red:   {Nitrogen: 40, Phosphorous: 24, Potassium: 74, PH: 6.5},
		Sandy: {Nitrogen: 26, Phosphorous: 16, Potassium: 50, PH: 7.1},
	},
	"Tirunelveli": {
		Black: {Nitrogen: 68, Phosphorous: 30, Potassium: 128, PH: 8.1},
		Sandy: {Nitrogen: 25, Phosphorous: 15, Potassium: 48, PH: 7.6},
		Red:   {Nitrogen: 43, Phosphorous: 26, Potassium: 79, PH: 6.8},
	},
	"The Nilgiris": {
		Laterite: {Nitrogen: 55, Phosphorous: 20, Potassium: 70, PH: 5.2},
		Loamy:    {Nitrogen: 78, Phosphorous: 36, Potassium: 95, PH: 5.8},
	},
	"Villupuram": {
		Red:   {Nitrogen: 47, Phosphorous: 29, Potassium: 84, PH: 6.6},
		Clay:  {Nitrogen: 61, Phosphorous: 39, Potassium: 98, PH: 7.1},
		Black: {Nitrogen: 69, Phosphorous: 32, Potassium: 126, PH: 7.8},
	},
}

// soilColorAliases maps free-text soil descriptions to canonical soil types.
var soilColorAliases = map[string]string{
	"Red Sandy Loam":    Red,
	"Red Loam":          Red,
	"Red Loamy":         Red,
	"Reddish Brown":     Red,
	"Black Cotton":      Black,
	"Black Cotton Soil": Black,
	"Regur":             Black,
	"Dark Brown":        Black,
	"Clayey":            Clay,
	"Clay Loam":         Clay,
	"Heavy Clay":        Clay,
	"Alluvium":          Alluvial,
	"Coastal Alluvium":  Alluvial,
	"Delta Alluvium":    Alluvial,
	"Lateritic":         Laterite,
	"Laterite Loam":     Laterite,
	"Sandy Loam":        Sandy,
	"Coastal Sand":      Sandy,
	"Loam":              Loamy,
	"Silty Loam":        Loamy,
}
