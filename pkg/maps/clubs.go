package maps

import (
	"fmt"
	"math"

	"club-conquest/internal/game"
	"club-conquest/internal/geom"
)

// Club is a real football club that can lead a team.
type Club struct {
	Name         string
	City         string
	Lon          float64
	Lat          float64
	Color        string
	Colors       []string // primary and secondary, for striped maps
	Overall      int      // 0 means unrated
	Abbreviation string
}

// Countries lists the supported countries in menu order.
var Countries = []string{"Turkey", "Italy", "Spain", "France", "Germany", "Portugal", "Netherlands", "England"}

// fallbackColors colors teams whose club has no color, or that have no club.
var fallbackColors = []string{"#ef4444", "#3b82f6", "#10b981", "#f59e0b", "#8b5cf6", "#22c55e", "#ec4899", "#14b8a6"}

// Clubs returns the clubs of a country, or nil for an unknown country.
func Clubs(country string) []Club {
	return countryClubs[country]
}

// Roster builds n teams for a country. Clubs fill the first slots in list
// order; the rest are named "Team N". Unrated clubs get the default overall.
func Roster(country string, n int) []game.TeamInput {
	clubs := Clubs(country)
	teams := make([]game.TeamInput, n)
	for i := range teams {
		teams[i] = game.TeamInput{
			ID:    i,
			Name:  fmt.Sprintf("Team %d", i+1),
			Color: fallbackColors[i%len(fallbackColors)],
		}
		if i >= len(clubs) {
			continue
		}
		c := clubs[i]
		teams[i].Name = c.Name
		teams[i].Overall = c.Overall
		switch {
		case c.Color != "":
			teams[i].Color = c.Color
		case len(c.Colors) > 0:
			teams[i].Color = c.Colors[0]
		}
	}
	return teams
}

// Anchors places the first n clubs of a country on a unit square, y up, by
// scaling their coordinates to the bounding box of the country's clubs.
// Clubs sharing a city are spread on a small circle around it. Anchors are
// only returned for clubs, so there may be fewer than n.
func Anchors(country string, n int) []geom.Point {
	clubs := Clubs(country)
	if n < len(clubs) {
		clubs = clubs[:n]
	}
	if len(clubs) == 0 {
		return nil
	}

	minLon, maxLon := math.Inf(1), math.Inf(-1)
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	for _, c := range Clubs(country) {
		minLon, maxLon = math.Min(minLon, c.Lon), math.Max(maxLon, c.Lon)
		minLat, maxLat = math.Min(minLat, c.Lat), math.Max(maxLat, c.Lat)
	}

	const margin = 0.1
	scale := func(v, lo, hi float64) float64 {
		if hi-lo < 1e-9 {
			return 0.5
		}
		return margin + (v-lo)/(hi-lo)*(1-2*margin)
	}

	const spread = 0.06
	perCity := make(map[string]int)
	cityTotal := make(map[string]int)
	for _, c := range clubs {
		cityTotal[c.City]++
	}

	anchors := make([]geom.Point, len(clubs))
	for i, c := range clubs {
		p := geom.Pt(scale(c.Lon, minLon, maxLon), scale(c.Lat, minLat, maxLat))
		if total := cityTotal[c.City]; total > 1 {
			k := perCity[c.City]
			perCity[c.City]++
			p = p.Add(geom.Unit(360 * float64(k) / float64(total)).Scale(spread))
		}
		anchors[i] = p
	}
	return anchors
}

var countryClubs = map[string][]Club{
	"Turkey": {
		{Name: "Galatasaray", City: "Istanbul", Lon: 28.965, Lat: 41.02, Color: "#A3262A", Colors: []string{"#F4C10F", "#A3262A"}, Overall: 85, Abbreviation: "GS"},
		{Name: "Fenerbahçe", City: "Istanbul", Lon: 29.0634, Lat: 41.0214, Color: "#041E42", Colors: []string{"#FEE715", "#041E42"}, Overall: 79, Abbreviation: "FB"},
		{Name: "Beşiktaş", City: "Istanbul", Lon: 29.01, Lat: 41.039, Color: "#000000", Colors: []string{"#000000", "#FFFFFF"}, Overall: 78, Abbreviation: "BJK"},
		{Name: "Trabzonspor", City: "Trabzon", Lon: 39.7168, Lat: 41.0031, Color: "#7C162E", Colors: []string{"#7C162E", "#64B5F6"}, Overall: 77, Abbreviation: "TS"},
		{Name: "Samsunspor", City: "Samsun", Lon: 36.3300, Lat: 41.2928, Color: "#FF0000", Colors: []string{"#FF0000", "#FFFFFF"}, Overall: 75, Abbreviation: "SS"},
		{Name: "Konyaspor", City: "Konya", Lon: 32.4846, Lat: 37.8746, Color: "#0B6E4F", Colors: []string{"#0B6E4F", "#FFFFFF"}, Overall: 74, Abbreviation: "KN"},
		{Name: "Kayserispor", City: "Kayseri", Lon: 35.4853, Lat: 38.7348, Color: "#D32F2F", Colors: []string{"#D32F2F", "#FBC02D"}, Overall: 71, Abbreviation: "KY"},
		{Name: "Antalyaspor", City: "Antalya", Lon: 30.7133, Lat: 36.8969, Color: "#D50000", Colors: []string{"#D50000", "#FFFFFF"}, Overall: 71, Abbreviation: "AT"},
		{Name: "Başakşehir", City: "Istanbul", Lon: 28.8076, Lat: 41.0931, Color: "#1B3A68", Colors: []string{"#1B3A68", "#FF6F00"}, Overall: 76, Abbreviation: "BŞ"},
		{Name: "Kasımpaşa", City: "Istanbul", Lon: 28.974, Lat: 41.044, Color: "#0046AD", Colors: []string{"#0046AD", "#FFFFFF"}, Overall: 70, Abbreviation: "KB"},
		{Name: "İstanbulspor", City: "Istanbul", Lon: 28.866, Lat: 41.06, Color: "#000000", Colors: []string{"#000000", "#FFD200"}, Overall: 68, Abbreviation: "İS"},
		{Name: "Karagümrük", City: "Istanbul", Lon: 28.955, Lat: 41.022, Color: "#000000", Colors: []string{"#000000", "#FF0000"}, Overall: 69, Abbreviation: "KG"},
		{Name: "Gaziantep FK", City: "Gaziantep", Lon: 37.3792, Lat: 37.0662, Color: "#C62828", Colors: []string{"#C62828", "#000000"}, Overall: 70, Abbreviation: "GFK"},
		{Name: "Rizespor", City: "Rize", Lon: 40.5234, Lat: 41.0201, Color: "#007F5F", Colors: []string{"#007F5F", "#FFFFFF"}, Overall: 69, Abbreviation: "RZ"},
		{Name: "MKE Ankaragücü", City: "Ankara", Lon: 32.8597, Lat: 39.9334, Color: "#0D47A1", Colors: []string{"#0D47A1", "#FFD600"}, Overall: 71, Abbreviation: "AG"},
		{Name: "Gençlerbirliği", City: "Ankara", Lon: 32.8597, Lat: 39.9334, Color: "#D50000", Colors: []string{"#D50000", "#000000"}, Overall: 69, Abbreviation: "GB"},
		{Name: "Adana Demirspor", City: "Adana", Lon: 35.3213, Lat: 37.0007, Color: "#0E4C92", Colors: []string{"#0E4C92", "#87CEEB"}, Overall: 75, Abbreviation: "AD"},
		{Name: "Bursaspor", City: "Bursa", Lon: 29.061, Lat: 40.195, Color: "#008D4F", Colors: []string{"#008D4F", "#FFFFFF"}, Overall: 72, Abbreviation: "BS"},
		{Name: "Sivasspor", City: "Sivas", Lon: 37.016, Lat: 39.7477, Color: "#E51C23", Colors: []string{"#E51C23", "#FFFFFF"}, Overall: 70, Abbreviation: "SV"},
	},
	"Italy": {
		{Name: "Juventus", City: "Turin", Lon: 7.6869, Lat: 45.0703, Colors: []string{"#000000", "#FFFFFF"}, Abbreviation: "JUV"},
		{Name: "AC Milan", City: "Milan", Lon: 9.19, Lat: 45.4642, Colors: []string{"#FB090B", "#000000"}, Abbreviation: "MIL"},
		{Name: "Inter", City: "Milan", Lon: 9.19, Lat: 45.4642, Colors: []string{"#0068A8", "#000000"}, Abbreviation: "INT"},
		{Name: "Roma", City: "Rome", Lon: 12.4964, Lat: 41.9028, Colors: []string{"#8B0000", "#FFD700"}, Abbreviation: "ROM"},
		{Name: "Lazio", City: "Rome", Lon: 12.4964, Lat: 41.9028, Colors: []string{"#87CEEB", "#FFFFFF"}, Abbreviation: "LAZ"},
		{Name: "Napoli", City: "Naples", Lon: 14.2681, Lat: 40.8518, Colors: []string{"#0066CC", "#FFFFFF"}, Abbreviation: "NAP"},
		{Name: "Fiorentina", City: "Florence", Lon: 11.2558, Lat: 43.7696, Colors: []string{"#7B2CBF", "#FFFFFF"}, Abbreviation: "FIO"},
		{Name: "Atalanta", City: "Bergamo", Lon: 9.6773, Lat: 45.6983, Colors: []string{"#0000FF", "#000000"}, Abbreviation: "ATA"},
	},
	"Spain": {
		{Name: "Real Madrid", City: "Madrid", Lon: -3.7038, Lat: 40.4168, Colors: []string{"#FFFFFF", "#FFD700"}, Abbreviation: "RMA"},
		{Name: "Barcelona", City: "Barcelona", Lon: 2.1734, Lat: 41.3851, Colors: []string{"#A50044", "#004D98"}, Abbreviation: "BAR"},
		{Name: "Atlético Madrid", City: "Madrid", Lon: -3.7038, Lat: 40.4168, Colors: []string{"#CE1126", "#FFFFFF"}, Abbreviation: "ATM"},
		{Name: "Sevilla", City: "Seville", Lon: -5.9845, Lat: 37.3891, Colors: []string{"#FFFFFF", "#FF0000"}, Abbreviation: "SEV"},
		{Name: "Valencia", City: "Valencia", Lon: -0.3763, Lat: 39.4699, Colors: []string{"#FF6600", "#000000"}, Abbreviation: "VAL"},
		{Name: "Villarreal", City: "Villarreal", Lon: -0.1014, Lat: 39.937, Colors: []string{"#FFD700", "#000000"}, Abbreviation: "VIL"},
		{Name: "Real Sociedad", City: "San Sebastián", Lon: -1.9812, Lat: 43.3183, Colors: []string{"#0033A0", "#FFFFFF"}, Abbreviation: "RSO"},
		{Name: "Athletic Bilbao", City: "Bilbao", Lon: -2.935, Lat: 43.263, Colors: []string{"#FF0000", "#FFFFFF"}, Abbreviation: "ATH"},
	},
	"France": {
		{Name: "PSG", City: "Paris", Lon: 2.3522, Lat: 48.8566, Colors: []string{"#004170", "#ED1C24"}, Abbreviation: "PSG"},
		{Name: "Marseille", City: "Marseille", Lon: 5.3698, Lat: 43.2965, Colors: []string{"#00A8CC", "#FFFFFF"}, Abbreviation: "OM"},
		{Name: "Lyon", City: "Lyon", Lon: 4.8357, Lat: 45.764, Colors: []string{"#FFFFFF", "#0000FF"}, Abbreviation: "OL"},
		{Name: "Monaco", City: "Monaco", Lon: 7.4246, Lat: 43.7384, Colors: []string{"#FF0000", "#FFFFFF"}, Abbreviation: "ASM"},
		{Name: "Lille", City: "Lille", Lon: 3.0573, Lat: 50.6292, Colors: []string{"#FF0000", "#0000FF"}, Abbreviation: "LOSC"},
		{Name: "Nice", City: "Nice", Lon: 7.2619, Lat: 43.7102, Colors: []string{"#FF0000", "#000000"}, Abbreviation: "OGCN"},
		{Name: "Saint-Étienne", City: "Saint-Étienne", Lon: 4.3872, Lat: 45.4397, Colors: []string{"#00FF00", "#FFFFFF"}, Abbreviation: "ASSE"},
		{Name: "Rennes", City: "Rennes", Lon: -1.6778, Lat: 48.1173, Colors: []string{"#FF0000", "#000000"}, Abbreviation: "SRFC"},
	},
	"Germany": {
		{Name: "Bayern", City: "Munich", Lon: 11.582, Lat: 48.1351},
		{Name: "Dortmund", City: "Dortmund", Lon: 7.4653, Lat: 51.5136},
		{Name: "Schalke", City: "Gelsenkirchen", Lon: 7.081, Lat: 51.5177},
		{Name: "RB Leipzig", City: "Leipzig", Lon: 12.3731, Lat: 51.3397},
		{Name: "Leverkusen", City: "Leverkusen", Lon: 6.984, Lat: 51.0303},
		{Name: "Frankfurt", City: "Frankfurt", Lon: 8.6821, Lat: 50.1109},
		{Name: "Hertha", City: "Berlin", Lon: 13.405, Lat: 52.52},
		{Name: "Hamburg", City: "Hamburg", Lon: 9.9937, Lat: 53.5511},
	},
	"Portugal": {
		{Name: "Benfica", City: "Lisbon", Lon: -9.1427, Lat: 38.7369},
		{Name: "Sporting", City: "Lisbon", Lon: -9.1427, Lat: 38.7369},
		{Name: "Porto", City: "Porto", Lon: -8.6291, Lat: 41.1579},
		{Name: "Braga", City: "Braga", Lon: -8.4292, Lat: 41.5454},
		{Name: "Guimarães", City: "Guimarães", Lon: -8.29, Lat: 41.4442},
		{Name: "Boavista", City: "Porto", Lon: -8.6291, Lat: 41.1579},
	},
	"Netherlands": {
		{Name: "Ajax", City: "Amsterdam", Lon: 4.9041, Lat: 52.3676},
		{Name: "PSV", City: "Eindhoven", Lon: 5.4697, Lat: 51.4416},
		{Name: "Feyenoord", City: "Rotterdam", Lon: 4.4777, Lat: 51.9244},
		{Name: "AZ Alkmaar", City: "Alkmaar", Lon: 4.7485, Lat: 52.6319},
		{Name: "Utrecht", City: "Utrecht", Lon: 5.1214, Lat: 52.0907},
		{Name: "Heerenveen", City: "Heerenveen", Lon: 5.9185, Lat: 52.959},
		{Name: "Groningen", City: "Groningen", Lon: 6.5665, Lat: 53.2194},
		{Name: "Twente", City: "Enschede", Lon: 6.8958, Lat: 52.2215},
	},
	"England": {
		{Name: "Manchester United", City: "Manchester", Lon: -2.2426, Lat: 53.4808},
		{Name: "Manchester City", City: "Manchester", Lon: -2.2426, Lat: 53.4808},
		{Name: "Liverpool", City: "Liverpool", Lon: -2.9779, Lat: 53.4084},
		{Name: "Everton", City: "Liverpool", Lon: -2.9916, Lat: 53.4388},
		{Name: "Chelsea", City: "London", Lon: -0.1276, Lat: 51.5074},
		{Name: "Arsenal", City: "London", Lon: -0.1276, Lat: 51.5074},
		{Name: "Tottenham", City: "London", Lon: -0.1276, Lat: 51.5074},
		{Name: "Newcastle", City: "Newcastle", Lon: -1.6178, Lat: 54.9783},
	},
}
