// Package cities holds the South African city reference data and the
// provider-code rules derived from it.
package cities

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/devprompt93/clean-scan/internal/models"
)

// SACities lists cities and large towns offered in provider and facility
// forms. Kept sorted alphabetically.
var SACities = []string{
	"Albany", "Alberton", "Alexandra", "Alice", "Atlantis", "Barberton",
	"Beaufort West", "Bellville", "Bethal", "Bethlehem", "Bloemfontein",
	"Bloemhof", "Bothaville", "Botshabelo", "Boksburg", "Brakpan", "Brits",
	"Cape Town", "Caledon", "Carletonville", "Centurion", "Cradock", "De Aar",
	"Durban", "East London", "eMalahleni (Witbank)", "Empangeni", "Ermelo",
	"Franschhoek", "Galeshewe", "Gansbaai", "George", "Germiston",
	"Graaff-Reinet", "Grabouw", "Port Elizabeth (Gqeberha)", "Greytown",
	"Harrismith", "Hermanus", "Howick", "Jeffreys Bay", "Johannesburg",
	"Kathu", "Khayelitsha", "Kimberley", "Klerksdorp", "Knysna", "Kokstad",
	"Komatipoort", "Krugersdorp", "KwaDukuza (Stanger)", "KwaMashu",
	"Ladybrand", "Ladysmith", "Lephalale", "Louis Trichardt (Makhado)",
	"Lichtenburg", "Lydenburg (Mashishing)", "Maake", "Mahikeng (Mafikeng)",
	"Malmesbury", "Malalane (Malelane)", "Mamelodi", "Margate",
	"Nelspruit (Mbombela)", "Middelburg (EC)", "Middelburg (MP)", "Midrand",
	"Mitchells Plain", "Mokopane (Potgietersrus)", "Mossel Bay",
	"Musina (Messina)", "Newcastle", "Orkney", "Oudtshoorn", "Paarl",
	"Phalaborwa", "Phuthaditjhaba (QwaQwa)", "Pietermaritzburg",
	"Piet Retief (eMkhondo)", "Pinetown", "Plettenberg Bay", "Polokwane",
	"Port Alfred", "Port Shepstone", "Potchefstroom", "Pretoria", "Prieska",
	"Queenstown (Komani)", "Randburg", "Rustenburg", "Sasolburg", "Secunda",
	"Seshego", "Somerset West", "Soweto", "Springs", "Stellenbosch",
	"Standerton", "Swellendam", "Tembisa", "Thohoyandou", "Tzaneen",
	"Uitenhage (Kariega)", "Ulundi", "Umhlanga", "Upington", "Vanderbijlpark",
	"Vereeniging", "Vredenburg", "Vryburg", "Vryheid", "Welkom", "Worcester",
	"Zeerust",
}

// prefixOverrides maps well-known cities to familiar abbreviations so
// provider codes read naturally (CPT-001 rather than CT-001).
var prefixOverrides = map[string]string{
	"Cape Town":                 "CPT",
	"Durban":                    "DBN",
	"Johannesburg":              "JHB",
	"Pretoria":                  "PTA",
	"Gqeberha (Port Elizabeth)": "PE",
	"East London":               "EL",
	"Bloemfontein":              "BLM",
	"Polokwane":                 "PLK",
	"Mbombela (Nelspruit)":      "NLP",
	"Kimberley":                 "KBY",
	"Rustenburg":                "RST",
	"Pietermaritzburg":          "PMB",
	"George":                    "GRG",
	"Stellenbosch":              "STB",
	"Mossel Bay":                "MSB",
	"Knysna":                    "KNY",
	"Oudtshoorn":                "ODS",
	"Worcester":                 "WRC",
	"Somerset West":             "SSW",
	"Vereeniging":               "VRG",
	"Vanderbijlpark":            "VDP",
	"Krugersdorp":               "KDP",
	"Centurion":                 "CTN",
	"Midrand":                   "MDR",
	"Soweto":                    "SWT",
}

// Prefix derives the 3-letter provider-code prefix for a city. Cities in
// the override table use their canonical abbreviation; anything else gets
// the first letter of each word (parenthetical content is flattened into
// the word stream), padded from the raw name's letters when too short.
// An unusable name yields "GEN".
func Prefix(city string) string {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return "GEN"
	}
	if override, ok := prefixOverrides[trimmed]; ok {
		return override
	}

	flattened := strings.NewReplacer("(", "", ")", "").Replace(trimmed)
	words := strings.FieldsFunc(flattened, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})
	var letters []rune
	for _, word := range words {
		letters = append(letters, []rune(word)[0])
	}
	if len(letters) >= 3 {
		return strings.ToUpper(string(letters[:3]))
	}

	var alphas []rune
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			alphas = append(alphas, r)
			if len(alphas) == 3 {
				break
			}
		}
	}
	if len(alphas) == 0 {
		return "GEN"
	}
	return strings.ToUpper(string(alphas))
}

// NextProviderCode returns the next free code for a city: the city prefix
// plus max-suffix-plus-one across existing providers of that city,
// zero-padded to three digits. Gaps are never refilled.
func NextProviderCode(city string, users []models.User) string {
	prefix := Prefix(city)
	highest := 0
	for _, u := range users {
		if u.Role != models.RoleProvider || u.City != city {
			continue
		}
		if !strings.HasPrefix(u.ProviderCode, prefix+"-") {
			continue
		}
		suffix := strings.TrimPrefix(u.ProviderCode, prefix+"-")
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, highest+1)
}

// EnsureProviderCode assigns a provider code when the user lacks one that
// matches their current city's prefix. Idempotent: a correct existing code
// is left untouched. A city change therefore always mints a fresh number;
// the old one stays retired within its city sequence.
func EnsureProviderCode(user models.User, users []models.User) models.User {
	if user.Role != models.RoleProvider || user.City == "" {
		return user
	}
	prefix := Prefix(user.City)
	if strings.HasPrefix(user.ProviderCode, prefix+"-") {
		return user
	}
	user.ProviderCode = NextProviderCode(user.City, users)
	return user
}
