package knowledge

// Local structured advisory data. This source is always available and never
// fails; the vector store only supplements it.

// CalendarEntry describes when and how a crop is planted.
type CalendarEntry struct {
	Crop           string
	Regions        []string
	PlantingMonths string
	Varieties      []string
	Spacing        string
	Notes          string
}

var plantingCalendar = []CalendarEntry{
	{
		Crop:           "maize",
		Regions:        []string{"nakuru", "uasin gishu", "trans nzoia", "bungoma", "kakamega"},
		PlantingMonths: "March-April (long rains), October (short rains in bimodal zones)",
		Varieties:      []string{"H614", "H629", "DK8031", "Duma 43"},
		Spacing:        "75cm between rows, 25cm within rows",
		Notes:          "Plant at the onset of the long rains with DAP fertilizer; top-dress with CAN at knee height.",
	},
	{
		Crop:           "beans",
		Regions:        []string{"kiambu", "murang'a", "embu", "meru", "kirinyaga"},
		PlantingMonths: "March-April and October-November",
		Varieties:      []string{"Rose Coco", "Mwitemania", "Wairimu"},
		Spacing:        "50cm between rows, 10cm within rows",
		Notes:          "Intercrops well with maize; avoid waterlogged soils.",
	},
	{
		Crop:           "potato",
		Regions:        []string{"nyandarua", "nakuru", "meru", "bomet"},
		PlantingMonths: "March and September",
		Varieties:      []string{"Shangi", "Kenya Mpya", "Unica"},
		Spacing:        "75cm between rows, 30cm within rows",
		Notes:          "Use certified seed; ridge at 4-6 weeks to prevent greening.",
	},
	{
		Crop:           "sorghum",
		Regions:        []string{"kitui", "makueni", "siaya", "homa bay"},
		PlantingMonths: "March-April, tolerant of late onset rains",
		Varieties:      []string{"Gadam", "Serena", "Seredo"},
		Spacing:        "60cm between rows, 20cm within rows",
		Notes:          "Drought-tolerant; bird scaring needed at grain filling.",
	},
	{
		Crop:           "tomato",
		Regions:        []string{"kirinyaga", "kajiado", "kiambu", "narok"},
		PlantingMonths: "Year-round under irrigation, otherwise March and September",
		Varieties:      []string{"Rio Grande", "Cal J", "Anna F1"},
		Spacing:        "60cm between rows, 45cm within rows",
		Notes:          "Stake indeterminate varieties; rotate away from solanaceous crops.",
	},
}

// PestEntry describes a pest or disease, its hosts, symptoms and treatment.
type PestEntry struct {
	Name      string
	Crops     []string
	Symptoms  []string
	Treatment string
}

var pestTable = []PestEntry{
	{
		Name:      "fall armyworm",
		Crops:     []string{"maize", "sorghum"},
		Symptoms:  []string{"ragged holes", "holes in leaves", "sawdust-like frass", "window panes on leaves"},
		Treatment: "Scout early morning; apply lambda-cyhalothrin or spinetoram into the whorl; encourage natural enemies.",
	},
	{
		Name:      "maize lethal necrosis",
		Crops:     []string{"maize"},
		Symptoms:  []string{"yellowing", "mottling", "dead heart", "stunted growth"},
		Treatment: "No cure; uproot and destroy infected plants, control thrips vectors, use certified seed and crop rotation.",
	},
	{
		Name:      "late blight",
		Crops:     []string{"potato", "tomato"},
		Symptoms:  []string{"dark water-soaked spots", "white mold under leaves", "rotting tubers"},
		Treatment: "Preventive sprays of mancozeb alternating with systemic fungicides; avoid overhead irrigation.",
	},
	{
		Name:      "aphids",
		Crops:     []string{"beans", "kale", "cabbage", "tomato"},
		Symptoms:  []string{"curled leaves", "sticky honeydew", "sooty mold", "stunted shoots"},
		Treatment: "Spray soap solution or imidacloprid at economic threshold; conserve ladybird beetles.",
	},
	{
		Name:      "bean fly",
		Crops:     []string{"beans"},
		Symptoms:  []string{"swollen stems", "yellowing seedlings", "wilting after emergence"},
		Treatment: "Seed-dress with imidacloprid; earth up stems; plant early in the season.",
	},
	{
		Name:      "newcastle disease",
		Crops:     []string{"chicken", "poultry"},
		Symptoms:  []string{"twisted neck", "greenish diarrhea", "sudden death", "gasping"},
		Treatment: "No treatment; vaccinate per schedule and cull affected birds; disinfect housing.",
	},
	{
		Name:      "east coast fever",
		Crops:     []string{"cattle", "cow", "dairy"},
		Symptoms:  []string{"swollen lymph nodes", "high fever", "difficulty breathing"},
		Treatment: "Veterinary treatment with buparvaquone; control ticks with weekly acaricide dips.",
	},
}

// LivestockEntry holds husbandry guidance per animal type.
type LivestockEntry struct {
	Animal  string
	Aliases []string
	Feeding string
	Health  string
}

var livestockGuide = []LivestockEntry{
	{
		Animal:  "dairy cattle",
		Aliases: []string{"cow", "cattle", "dairy", "heifer", "calf"},
		Feeding: "Napier grass plus 2kg dairy meal per 5L of milk; constant clean water and mineral licks.",
		Health:  "Deworm quarterly, dip or spray weekly against ticks, vaccinate against FMD and lumpy skin disease.",
	},
	{
		Animal:  "chicken",
		Aliases: []string{"poultry", "broiler", "layer", "kienyeji"},
		Feeding: "Chick mash to 8 weeks, growers mash to point of lay, layers mash thereafter; clean water always.",
		Health:  "Newcastle vaccine at day 3 then every 3 months; gumboro at day 10; keep litter dry.",
	},
	{
		Animal:  "goat",
		Aliases: []string{"goats", "dairy goat"},
		Feeding: "Browse plus fodder such as calliandra; supplement lactating does with dairy meal.",
		Health:  "Deworm every 3 months; trim hooves; vaccinate against CCPP.",
	},
	{
		Animal:  "sheep",
		Aliases: []string{"lamb", "ewe"},
		Feeding: "Pasture plus hay in dry season; mineral supplementation.",
		Health:  "Control worms and foot rot; shear annually for wool breeds.",
	},
}

// MarketNote is indicative market guidance per commodity.
type MarketNote struct {
	Commodity string
	Note      string
}

var marketNotes = []MarketNote{
	{"maize", "Prices typically peak January-February before the harvest glut; NCPB and local millers are the main buyers."},
	{"beans", "Demand is steady year-round; prices rise during school terms from institutional buyers."},
	{"potato", "Sell shortly after harvest only if prices are strong; sprouting limits storage to about 3 months."},
	{"tomato", "Highly volatile; stagger planting to avoid county-wide glut weeks."},
	{"milk", "Processor prices are contractual; cooperatives often pay better than hawking during the wet season."},
}

// extensionNotes cover services, finance and training.
var extensionNotes = []string{
	"County agricultural offices offer free extension visits; register with your ward agricultural officer.",
	"The Agricultural Finance Corporation provides seasonal crop loans against title deeds or group guarantees.",
	"Certified seed and subsidized fertilizer are distributed through registered agro-dealers under the national subsidy program.",
	"Farmer field schools run by county extension teams teach integrated pest management practices.",
}

// genericPassages are the last-resort fallback so retrieval never hands
// callers an empty set.
var genericPassages = []string{
	"Test your soil every 2-3 years through the nearest KALRO laboratory to match fertilizer to your soil needs.",
	"Use certified seed from registered dealers; retained grain carries disease and yields poorly.",
	"Timely planting at the onset of rains is the single largest yield factor for rain-fed crops.",
	"Keep simple farm records of inputs and sales to know which enterprise actually makes money.",
}
