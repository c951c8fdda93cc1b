package catalog

var defaultRegions = map[string][]string{
	"andhra pradesh":                           {"Rice", "Cotton", "Sugarcane", "Chili", "Turmeric"},
	"arunachal pradesh":                        {"Rice", "Maize", "Millet", "Pulses"},
	"assam":                                    {"Rice", "Tea", "Jute", "Mustard", "Pulses"},
	"bihar":                                    {"Rice", "Wheat", "Maize", "Pulses", "Sugarcane"},
	"chhattisgarh":                             {"Rice", "Wheat", "Maize", "Pulses", "Sugarcane"},
	"goa":                                      {"Rice", "Cashew", "Coconut", "Spices"},
	"gujarat":                                  {"Cotton", "Groundnut", "Wheat", "Rice", "Sugarcane"},
	"haryana":                                  {"Wheat", "Rice", "Sugarcane", "Cotton", "Mustard"},
	"himachal pradesh":                         {"Wheat", "Maize", "Rice", "Barley", "Apple"},
	"jharkhand":                                {"Rice", "Wheat", "Maize", "Pulses", "Sugarcane"},
	"karnataka":                                {"Rice", "Sugarcane", "Ragi", "Cotton", "Coffee"},
	"kerala":                                   {"Rice", "Coconut", "Spices", "Tea", "Coffee"},
	"madhya pradesh":                           {"Wheat", "Rice", "Soybean", "Cotton", "Sugarcane"},
	"maharashtra":                              {"Cotton", "Sugarcane", "Rice", "Wheat", "Pulses"},
	"manipur":                                  {"Rice", "Maize", "Pulses", "Oilseeds"},
	"meghalaya":                                {"Rice", "Maize", "Wheat", "Pulses"},
	"mizoram":                                  {"Rice", "Maize", "Sugarcane", "Cotton"},
	"nagaland":                                 {"Rice", "Maize", "Millet", "Pulses"},
	"odisha":                                   {"Rice", "Wheat", "Pulses", "Sugarcane", "Cotton"},
	"punjab":                                   {"Wheat", "Rice", "Maize", "Cotton", "Sugarcane"},
	"rajasthan":                                {"Wheat", "Bajra", "Mustard", "Cotton", "Pulses"},
	"sikkim":                                   {"Rice", "Maize", "Wheat", "Barley", "Cardamom"},
	"tamil nadu":                               {"Rice", "Cotton", "Sugarcane", "Groundnut", "Pulses"},
	"telangana":                                {"Rice", "Cotton", "Maize", "Sugarcane", "Turmeric"},
	"tripura":                                  {"Rice", "Wheat", "Maize", "Pulses"},
	"uttar pradesh":                            {"Wheat", "Rice", "Sugarcane", "Pulses", "Potato"},
	"uttarakhand":                              {"Rice", "Wheat", "Sugarcane", "Pulses"},
	"west bengal":                              {"Rice", "Wheat", "Jute", "Tea", "Potato"},
	"andaman and nicobar islands":              {"Rice", "Coconut", "Arecanut", "Spices"},
	"chandigarh":                               {"Wheat", "Rice", "Maize", "Sugarcane"},
	"dadra and nagar haveli and daman and diu": {"Rice", "Wheat", "Sugarcane"},
	"delhi":                                    {"Wheat", "Rice", "Bajra", "Mustard"},
	"jammu and kashmir":                        {"Rice", "Wheat", "Maize", "Barley", "Mustard"},
	"ladakh":                                   {"Wheat", "Barley", "Peas", "Mustard"},
	"lakshadweep":                              {"Coconut", "Banana", "Sweet Potato"},
	"puducherry":                               {"Rice", "Sugarcane", "Cotton", "Groundnut"},
}

var defaultProfiles = map[string]Profile{
	"Rice":         npk(50, 30, 20),
	"Wheat":        npk(40, 35, 25),
	"Sugarcane":    npk(60, 25, 15),
	"Ragi":         npk(30, 40, 30),
	"Maize":        npk(55, 25, 20),
	"Cotton":       npk(45, 30, 25),
	"Millet":       npk(35, 30, 35),
	"Pulses":       npk(25, 45, 30),
	"Tea":          npk(70, 20, 10),
	"Coffee":       npk(65, 15, 20),
	"Coconut":      npk(40, 30, 30),
	"Groundnut":    npk(35, 40, 25),
	"Mustard":      npk(45, 35, 20),
	"Jute":         npk(50, 25, 25),
	"Chili":        npk(55, 30, 15),
	"Turmeric":     npk(60, 40, 20),
	"Soybean":      npk(30, 50, 20),
	"Bajra":        npk(40, 30, 30),
	"Barley":       npk(35, 40, 25),
	"Apple":        npk(45, 25, 30),
	"Spices":       npk(50, 35, 15),
	"Potato":       npk(55, 45, 20),
	"Oilseeds":     npk(40, 35, 25),
	"Cashew":       npk(35, 25, 40),
	"Arecanut":     npk(45, 30, 25),
	"Banana":       npk(65, 20, 15),
	"Sweet Potato": npk(40, 35, 25),
	"Cardamom":     npk(55, 30, 15),
	"Peas":         npk(30, 45, 25),
}

var unionTerritories = map[string]struct{}{
	"andaman and nicobar islands":              {},
	"chandigarh":                               {},
	"dadra and nagar haveli and daman and diu": {},
	"delhi":                                    {},
	"jammu and kashmir":                        {},
	"ladakh":                                   {},
	"lakshadweep":                              {},
	"puducherry":                               {},
}

func npk(n, p, k float64) Profile {
	return Profile{{Nitrogen, n}, {Phosphorus, p}, {Potassium, k}}
}
