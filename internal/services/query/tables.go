package query

// brandAliases maps lower-cased manufacturer shorthand to the canonical
// Wikipedia page title for that brand.
var brandAliases = map[string]string{
	"tesla":      "Tesla, Inc.",
	"bmw":        "BMW",
	"mercedes":   "Mercedes-Benz",
	"audi":       "Audi",
	"volkswagen": "Volkswagen",
	"toyota":     "Toyota",
	"honda":      "Honda",
	"ford":       "Ford Motor Company",
	"chevrolet":  "Chevrolet",
	"nissan":     "Nissan",
	"hyundai":    "Hyundai Motor Company",
	"kia":        "Kia Corporation",
	"mazda":      "Mazda",
	"subaru":     "Subaru",
	"lexus":      "Lexus",
	"porsche":    "Porsche",
}

// protectedModelTokens suppress brand substitution: a query mentioning one
// of these is about a specific model, and collapsing it to the brand page
// would discard that specificity.
var protectedModelTokens = []string{
	"mustang", "f-150", "focus", "fiesta", "camaro", "corvette",
}

// modelKeywords lists well-known vehicle model names in priority order.
// The first keyword found in a query selects its candidate titles.
var modelKeywords = []string{
	"mustang", "camaro", "corvette", "f-150", "civic", "accord",
	"corolla", "camry", "model s", "model 3", "model x", "model y",
	"911", "m3", "m5", "golf", "beetle", "prius", "wrangler",
}

// modelCandidates maps a model keyword to the ordered page titles worth
// trying for it, most canonical first.
var modelCandidates = map[string][]string{
	"mustang":  {"Ford Mustang", "Ford Mustang (first generation)"},
	"camaro":   {"Chevrolet Camaro", "Chevrolet Camaro (first generation)"},
	"corvette": {"Chevrolet Corvette", "Chevrolet Corvette (C1)"},
	"f-150":    {"Ford F-Series", "Ford F-150"},
	"civic":    {"Honda Civic", "Honda Civic (first generation)"},
	"accord":   {"Honda Accord", "Honda Accord (first generation)"},
	"corolla":  {"Toyota Corolla", "Toyota Corolla (E10)"},
	"camry":    {"Toyota Camry", "Toyota Camry (V10)"},
	"model s":  {"Tesla Model S"},
	"model 3":  {"Tesla Model 3"},
	"model x":  {"Tesla Model X"},
	"model y":  {"Tesla Model Y"},
	"911":      {"Porsche 911"},
	"m3":       {"BMW M3"},
	"m5":       {"BMW M5"},
	"golf":     {"Volkswagen Golf", "Volkswagen Golf Mk1"},
	"beetle":   {"Volkswagen Beetle"},
	"prius":    {"Toyota Prius"},
	"wrangler": {"Jeep Wrangler"},
}
