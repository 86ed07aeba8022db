package cities

// MajorCities are the cities with dependent area dropdowns in the admin
// facility forms.
var MajorCities = []string{
	"Cape Town", "Durban", "Johannesburg", "Pretoria",
	"Port Elizabeth (Gqeberha)", "East London", "Bloemfontein", "Polokwane",
	"Nelspruit (Mbombela)", "Kimberley", "Rustenburg", "Pietermaritzburg",
	"George", "Stellenbosch", "Mossel Bay", "Knysna", "Oudtshoorn",
	"Worcester", "Somerset West", "Vereeniging", "Vanderbijlpark",
	"Krugersdorp", "Centurion", "Midrand", "Soweto",
}

var cityAreas = map[string][]string{
	"Cape Town": {
		"Bellville", "Khayelitsha", "Milnerton", "Parow", "Delft",
		"Mitchells Plain", "Observatory", "Sea Point", "Green Point",
		"Camps Bay", "Claremont", "Newlands", "Rondebosch", "Mowbray",
		"Woodstock", "Salt River", "Langa", "Gugulethu", "Nyanga",
		"Philippi", "Manenberg", "Bonteheuwel", "Athlone", "Lansdowne",
		"Ottery", "Grassy Park", "Lotus River", "Wynberg", "Tokai",
		"Constantia", "Hout Bay", "Kommetjie", "Noordhoek", "Fish Hoek",
		"Simon's Town", "Muizenberg", "St James", "Kalk Bay", "Glencairn",
		"Scarborough",
	},
	"Durban": {
		"Berea", "Glenwood", "Musgrave", "Morningside", "North Beach",
		"South Beach", "Point", "Victoria Street", "Greyville", "Berea West",
		"Berea East", "Essenwood", "Northcliff", "Westville", "Pinetown",
		"Hillcrest", "Kloof", "Gillitts", "Waterfall", "Assagay",
		"Botha's Hill",
	},
	"Johannesburg": {
		"Sandton", "Rosebank", "Melville", "Parktown", "Braamfontein",
		"Hillbrow", "Yeoville", "Bellevue", "Bellevue East", "Bellevue West",
		"Bellevue North", "Bellevue South", "Bellevue Central",
		"Bellevue Heights", "Bellevue Gardens", "Bellevue Park",
		"Bellevue Estate", "Bellevue Manor", "Bellevue Ridge", "Bellevue View",
	},
	"Pretoria": {
		"Arcadia", "Brooklyn", "Hatfield", "Lynnwood", "Menlo Park",
		"Waterkloof", "Waterkloof Glen", "Waterkloof Ridge",
		"Waterkloof Heights", "Waterkloof Park", "Waterkloof Estate",
		"Waterkloof Manor",
	},
	"Port Elizabeth (Gqeberha)": {
		"Summerstrand", "Humewood", "Mill Park", "Mount Croix", "Walmer",
	},
	"East London": {
		"Vincent", "Quigney", "Berea", "Berea West", "Berea East",
		"Berea North", "Berea South", "Berea Central", "Berea Heights",
		"Berea Gardens", "Berea Park", "Berea Estate", "Berea Manor",
		"Berea Ridge",
	},
	"Bloemfontein": {
		"Westdene", "Langenhoven Park", "Fichardt Park", "Bayswater",
		"Bayswater Park", "Bayswater Estate", "Bayswater Manor",
		"Bayswater Ridge", "Bayswater Heights", "Bayswater Gardens",
	},
}

// AreasForCity returns the known areas for a city, deduplicated in their
// original order. Unknown cities return an empty list.
func AreasForCity(city string) []string {
	areas := cityAreas[city]
	if len(areas) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(areas))
	out := make([]string, 0, len(areas))
	for _, area := range areas {
		if seen[area] {
			continue
		}
		seen[area] = true
		out = append(out, area)
	}
	return out
}
