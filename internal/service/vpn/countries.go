package vpn

import (
	"sort"
	"strings"
	"sync"
)

// ISO 3166-1 alpha-2 code -> English display name, matching what the bot's
// geo lookup reports. Stored values are the lowercased names.
var countryNames = map[string]string{
	"AF": "Afghanistan", "AX": "Åland Islands", "AL": "Albania", "DZ": "Algeria",
	"AS": "American Samoa", "AD": "Andorra", "AO": "Angola", "AI": "Anguilla",
	"AQ": "Antarctica", "AG": "Antigua & Barbuda", "AR": "Argentina", "AM": "Armenia",
	"AW": "Aruba", "AU": "Australia", "AT": "Austria", "AZ": "Azerbaijan",
	"BS": "Bahamas", "BH": "Bahrain", "BD": "Bangladesh", "BB": "Barbados",
	"BY": "Belarus", "BE": "Belgium", "BZ": "Belize", "BJ": "Benin",
	"BM": "Bermuda", "BT": "Bhutan", "BO": "Bolivia", "BQ": "Caribbean Netherlands",
	"BA": "Bosnia & Herzegovina", "BW": "Botswana", "BV": "Bouvet Island", "BR": "Brazil",
	"IO": "British Indian Ocean Territory", "BN": "Brunei", "BG": "Bulgaria", "BF": "Burkina Faso",
	"BI": "Burundi", "CV": "Cape Verde", "KH": "Cambodia", "CM": "Cameroon",
	"CA": "Canada", "KY": "Cayman Islands", "CF": "Central African Republic", "TD": "Chad",
	"CL": "Chile", "CN": "China", "CX": "Christmas Island", "CC": "Cocos Islands",
	"CO": "Colombia", "KM": "Comoros", "CG": "Congo - Brazzaville", "CD": "Congo - Kinshasa",
	"CK": "Cook Islands", "CR": "Costa Rica", "CI": "Côte d'Ivoire", "HR": "Croatia",
	"CU": "Cuba", "CW": "Curaçao", "CY": "Cyprus", "CZ": "Czechia",
	"DK": "Denmark", "DJ": "Djibouti", "DM": "Dominica", "DO": "Dominican Republic",
	"EC": "Ecuador", "EG": "Egypt", "SV": "El Salvador", "GQ": "Equatorial Guinea",
	"ER": "Eritrea", "EE": "Estonia", "SZ": "Eswatini", "ET": "Ethiopia",
	"FK": "Falkland Islands", "FO": "Faroe Islands", "FJ": "Fiji", "FI": "Finland",
	"FR": "France", "GF": "French Guiana", "PF": "French Polynesia", "TF": "French Southern Territories",
	"GA": "Gabon", "GM": "Gambia", "GE": "Georgia", "DE": "Germany",
	"GH": "Ghana", "GI": "Gibraltar", "GR": "Greece", "GL": "Greenland",
	"GD": "Grenada", "GP": "Guadeloupe", "GU": "Guam", "GT": "Guatemala",
	"GG": "Guernsey", "GN": "Guinea", "GW": "Guinea-Bissau", "GY": "Guyana",
	"HT": "Haiti", "HM": "Heard & McDonald Islands", "VA": "Vatican City", "HN": "Honduras",
	"HK": "Hong Kong", "HU": "Hungary", "IS": "Iceland", "IN": "India",
	"ID": "Indonesia", "IR": "Iran", "IQ": "Iraq", "IE": "Ireland",
	"IM": "Isle of Man", "IL": "Israel", "IT": "Italy", "JM": "Jamaica",
	"JP": "Japan", "JE": "Jersey", "JO": "Jordan", "KZ": "Kazakhstan",
	"KE": "Kenya", "KI": "Kiribati", "KP": "North Korea", "KR": "South Korea",
	"KW": "Kuwait", "KG": "Kyrgyzstan", "LA": "Laos", "LV": "Latvia",
	"LB": "Lebanon", "LS": "Lesotho", "LR": "Liberia", "LY": "Libya",
	"LI": "Liechtenstein", "LT": "Lithuania", "LU": "Luxembourg", "MO": "Macao",
	"MG": "Madagascar", "MW": "Malawi", "MY": "Malaysia", "MV": "Maldives",
	"ML": "Mali", "MT": "Malta", "MH": "Marshall Islands", "MQ": "Martinique",
	"MR": "Mauritania", "MU": "Mauritius", "YT": "Mayotte", "MX": "Mexico",
	"FM": "Micronesia", "MD": "Moldova", "MC": "Monaco", "MN": "Mongolia",
	"ME": "Montenegro", "MS": "Montserrat", "MA": "Morocco", "MZ": "Mozambique",
	"MM": "Myanmar", "NA": "Namibia", "NR": "Nauru", "NP": "Nepal",
	"NL": "Netherlands", "NC": "New Caledonia", "NZ": "New Zealand", "NI": "Nicaragua",
	"NE": "Niger", "NG": "Nigeria", "NU": "Niue", "NF": "Norfolk Island",
	"MK": "North Macedonia", "MP": "Northern Mariana Islands", "NO": "Norway", "OM": "Oman",
	"PK": "Pakistan", "PW": "Palau", "PS": "Palestine", "PA": "Panama",
	"PG": "Papua New Guinea", "PY": "Paraguay", "PE": "Peru", "PH": "Philippines",
	"PN": "Pitcairn Islands", "PL": "Poland", "PT": "Portugal", "PR": "Puerto Rico",
	"QA": "Qatar", "RE": "Réunion", "RO": "Romania", "RU": "Russia",
	"RW": "Rwanda", "BL": "St. Barthélemy", "SH": "St. Helena", "KN": "St. Kitts & Nevis",
	"LC": "St. Lucia", "MF": "St. Martin", "PM": "St. Pierre & Miquelon", "VC": "St. Vincent & Grenadines",
	"WS": "Samoa", "SM": "San Marino", "ST": "São Tomé & Príncipe", "SA": "Saudi Arabia",
	"SN": "Senegal", "RS": "Serbia", "SC": "Seychelles", "SL": "Sierra Leone",
	"SG": "Singapore", "SX": "Sint Maarten", "SK": "Slovakia", "SI": "Slovenia",
	"SB": "Solomon Islands", "SO": "Somalia", "ZA": "South Africa", "GS": "South Georgia & South Sandwich Islands",
	"SS": "South Sudan", "ES": "Spain", "LK": "Sri Lanka", "SD": "Sudan",
	"SR": "Suriname", "SJ": "Svalbard & Jan Mayen", "SE": "Sweden", "CH": "Switzerland",
	"SY": "Syria", "TW": "Taiwan", "TJ": "Tajikistan", "TZ": "Tanzania",
	"TH": "Thailand", "TL": "Timor-Leste", "TG": "Togo", "TK": "Tokelau",
	"TO": "Tonga", "TT": "Trinidad & Tobago", "TN": "Tunisia", "TR": "Türkiye",
	"TM": "Turkmenistan", "TC": "Turks & Caicos Islands", "TV": "Tuvalu", "UG": "Uganda",
	"UA": "Ukraine", "AE": "United Arab Emirates", "GB": "United Kingdom", "UM": "U.S. Outlying Islands",
	"US": "United States", "UY": "Uruguay", "UZ": "Uzbekistan", "VU": "Vanuatu",
	"VE": "Venezuela", "VN": "Vietnam", "VG": "British Virgin Islands", "VI": "U.S. Virgin Islands",
	"WF": "Wallis & Futuna", "EH": "Western Sahara", "YE": "Yemen", "ZM": "Zambia",
	"ZW": "Zimbabwe",
}

// Shorthand people actually type, mapped to the alpha-2 code.
var countryAliases = map[string]string{
	"usa":            "US",
	"uk":             "GB",
	"uae":            "AE",
	"drc":            "CD",
	"congo":          "CG",
	"south korea":    "KR",
	"north korea":    "KP",
	"czech republic": "CZ",
	"ivory coast":    "CI",
	"russia":         "RU",
	"syria":          "SY",
	"laos":           "LA",
	"moldova":        "MD",
	"tanzania":       "TZ",
	"bolivia":        "BO",
	"venezuela":      "VE",
	"palestine":      "PS",
	"turkey":         "TR",
	"great britain":  "GB",
	"america":        "US",
}

// NormalizeCountry resolves flexible admin input (a full name, an alpha-2 or
// alpha-3 code, or a common alias) to the canonical lowercase country name.
// Returns "" when nothing matches.
func NormalizeCountry(input string) string {
	q := strings.ToLower(strings.TrimSpace(input))
	if q == "" {
		return ""
	}

	if code, ok := countryAliases[q]; ok {
		return strings.ToLower(countryNames[code])
	}

	if len(q) == 2 {
		if name, ok := countryNames[strings.ToUpper(q)]; ok {
			return strings.ToLower(name)
		}
	}

	// Alpha-3 best effort: match on the first three letters of a name.
	if len(q) == 3 && isAlpha(q) {
		if name := matchNamePrefix(q); name != "" {
			return name
		}
	}

	// Exact name, then prefix, then substring.
	for _, name := range allNames() {
		if name == q {
			return name
		}
	}
	if name := matchNamePrefix(q); name != "" {
		return name
	}
	for _, name := range allNames() {
		if strings.Contains(name, q) {
			return name
		}
	}
	return ""
}

var (
	namesOnce   sync.Once
	sortedNames []string
)

// allNames returns the lowercase directory in stable order so partial
// matches resolve the same way every time.
func allNames() []string {
	namesOnce.Do(func() {
		sortedNames = make([]string, 0, len(countryNames))
		for _, name := range countryNames {
			sortedNames = append(sortedNames, strings.ToLower(name))
		}
		sort.Strings(sortedNames)
	})
	return sortedNames
}

func matchNamePrefix(q string) string {
	for _, name := range allNames() {
		if strings.HasPrefix(stripNonAlpha(name), q) {
			return name
		}
	}
	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func stripNonAlpha(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
