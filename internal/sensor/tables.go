package sensor

import (
	"time"

	"github.com/tartampluch/anniversary-cards/internal/config"
)

var namedAnniversaries = map[int]string{
	1:  "Paper",
	5:  "Wood",
	10: "Tin",
	15: "Crystal",
	20: "China",
	25: "Silver",
	30: "Pearl",
	40: "Ruby",
	50: "Golden",
	60: "Diamond",
}

var birthstones = [12]string{
	"Garnet", "Amethyst", "Aquamarine", "Diamond", "Emerald", "Pearl",
	"Ruby", "Peridot", "Sapphire", "Opal", "Topaz", "Turquoise",
}

var birthFlowers = [12]string{
	"Carnation", "Violet", "Daffodil", "Daisy", "Lily of the Valley", "Rose",
	"Larkspur", "Gladiolus", "Aster", "Marigold", "Chrysanthemum", "Narcissus",
}

// zodiacStarts holds, per month, the first day of the sign that ends the month.
var zodiacStarts = [12]struct {
	day          int
	before, from string
}{
	{20, "Capricorn", "Aquarius"},
	{19, "Aquarius", "Pisces"},
	{21, "Pisces", "Aries"},
	{20, "Aries", "Taurus"},
	{21, "Taurus", "Gemini"},
	{21, "Gemini", "Cancer"},
	{23, "Cancer", "Leo"},
	{23, "Leo", "Virgo"},
	{23, "Virgo", "Libra"},
	{23, "Libra", "Scorpio"},
	{22, "Scorpio", "Sagittarius"},
	{22, "Sagittarius", "Capricorn"},
}

func zodiacSign(day int, month time.Month) string {
	z := zodiacStarts[month-1]
	if day >= z.day {
		return z.from
	}
	return z.before
}

// generations lists the first birth year of each generation, newest first.
var generations = []struct {
	from  int
	label string
}{
	{2013, "Generation Alpha"},
	{1997, "Generation Z"},
	{1981, "Millennials"},
	{1965, "Generation X"},
	{1946, "Baby Boomers"},
	{1928, "Silent Generation"},
	{config.GenerationMinYear, "Greatest Generation"},
}

func generationOf(year int) string {
	for _, g := range generations {
		if year >= g.from {
			return g.label
		}
	}
	return ""
}
