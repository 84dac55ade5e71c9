package analysis

// Domain vocabularies shared by the query analyzer, the intent classifier
// fallback, and user-context derivation. All matching is lowercase substring
// matching, so entries are lowercase.

// CropTerms are crop names recognized in queries and profiles.
var CropTerms = []string{
	"maize", "beans", "wheat", "rice", "potato", "tomato", "cassava",
	"sorghum", "millet", "coffee", "tea", "sukuma wiki", "kale", "cabbage",
	"banana", "avocado", "mango", "onion", "sugarcane", "groundnut",
}

// LivestockTerms are livestock types recognized in queries and profiles.
var LivestockTerms = []string{
	"cattle", "cow", "dairy", "goat", "sheep", "chicken", "poultry",
	"pig", "rabbit", "bee", "fish", "calf", "heifer", "broiler", "layer",
}

// PestTerms cover pests, diseases and their symptoms.
var PestTerms = []string{
	"pest", "disease", "fungus", "blight", "armyworm", "aphid", "weevil",
	"caterpillar", "locust", "mite", "wilt", "rot", "rust", "mold",
	"holes", "spots", "yellowing", "infestation", "larvae",
}

// TreatmentTerms cover interventions.
var TreatmentTerms = []string{
	"spray", "pesticide", "fungicide", "fertilizer", "manure", "treatment",
	"vaccine", "deworm", "medicine", "dose",
}

// WeatherTerms cover climate and weather vocabulary.
var WeatherTerms = []string{
	"weather", "rain", "rainfall", "drought", "climate", "forecast",
	"season", "irrigation", "frost", "temperature", "el nino",
}

// MarketTerms cover prices and trade.
var MarketTerms = []string{
	"price", "market", "sell", "buy", "cost", "profit", "demand",
	"broker", "export", "harvest price",
}

// ExtensionTerms cover advisory services, finance and training.
var ExtensionTerms = []string{
	"extension", "training", "loan", "credit", "subsidy", "cooperative",
	"insurance", "certification", "agrovet", "county officer",
}

// HealthTerms indicate a health concern without an emergency.
var HealthTerms = []string{
	"sick", "ill", "disease", "symptom", "infection", "pain", "fever",
	"losing weight", "not eating", "diarrhea",
}

// EmergencyTerms indicate situations needing an urgent response.
var EmergencyTerms = []string{
	"dying", "dead", "bleeding", "unconscious", "emergency", "urgent",
	"collapsed", "poisoned", "cannot breathe", "spreading fast",
}

// GreetingTerms are greetings in English and Kiswahili.
var GreetingTerms = []string{
	"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
	"habari", "jambo", "hujambo", "mambo", "shikamoo", "salama",
}

// Counties are the Kenyan counties the service recognizes for regional
// context. Lowercase, matched by substring like the other vocabularies.
var Counties = []string{
	"nairobi", "nakuru", "kiambu", "meru", "uasin gishu", "kisumu",
	"machakos", "trans nzoia", "nyeri", "embu", "kakamega", "bungoma",
	"narok", "kericho", "bomet", "nyandarua", "laikipia", "murang'a",
	"kitui", "makueni", "kilifi", "kwale", "homa bay", "migori", "siaya",
	"busia", "vihiga", "nandi", "baringo", "kajiado", "kirinyaga",
}

// FarmStageTerm pairs a keyword with the canonical stage it names.
type FarmStageTerm struct {
	Keyword string
	Stage   string
}

// FarmStageTerms maps farm-stage keywords to canonical stage names. The
// order is the match priority: the earliest keyword found in a text decides
// the stage, so resolution is stable for texts naming several stages.
var FarmStageTerms = []FarmStageTerm{
	{"planning", "planning"},
	{"prepare land", "planning"},
	{"planting", "planting"},
	{"sowing", "planting"},
	{"germinat", "growing"},
	{"growing", "growing"},
	{"weeding", "growing"},
	{"flowering", "growing"},
	{"harvesting", "harvesting"},
	{"harvest", "harvesting"},
	{"storage", "post-harvest"},
	{"post-harvest", "post-harvest"},
	{"drying", "post-harvest"},
}

// domainTerms is the combined keyword vocabulary used for keyword extraction.
var domainTerms = concat(
	CropTerms, LivestockTerms, PestTerms, TreatmentTerms,
	WeatherTerms, MarketTerms, ExtensionTerms,
)

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
