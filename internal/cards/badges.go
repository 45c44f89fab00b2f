package cards

import (
	"fmt"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

var zodiacEmoji = map[string]string{
	"Aquarius": "♒", "Pisces": "♓", "Aries": "♈", "Taurus": "♉",
	"Gemini": "♊", "Cancer": "♋", "Leo": "♌", "Virgo": "♍",
	"Libra": "♎", "Scorpio": "♏", "Sagittarius": "♐", "Capricorn": "♑",
}

var birthstoneEmoji = map[string]string{
	"Garnet": "🔴", "Amethyst": "🟣", "Aquamarine": "🔵", "Diamond": "💎",
	"Emerald": "🟢", "Pearl": "⚪", "Ruby": "♦️", "Peridot": "🟡",
	"Sapphire": "🔷", "Opal": "🌈", "Topaz": "🟠", "Turquoise": "🩵",
}

var attributeEmoji = map[string]string{
	config.AttrBirthFlower:      config.EmojiBirthFlower,
	config.AttrGeneration:       config.EmojiGeneration,
	config.AttrNamedAnniversary: config.EmojiNamedAnniversary,
	config.AttrCategory:         config.EmojiCategory,
	config.AttrNextDate:         config.EmojiDate,
	config.AttrWeeksRemaining:   config.EmojiWeeks,
	config.AttrYearsAtNext:      config.EmojiYearsAt,
}

// ZodiacEmoji returns the glyph of a zodiac sign.
func ZodiacEmoji(sign string) string {
	if e, ok := zodiacEmoji[sign]; ok {
		return e
	}
	return config.EmojiZodiacFallback
}

// BirthstoneEmoji returns the glyph of a birthstone.
func BirthstoneEmoji(stone string) string {
	if e, ok := birthstoneEmoji[stone]; ok {
		return e
	}
	return config.EmojiBirthstoneFallback
}

// badges renders the listed attributes in order, skipping undefined or empty values.
func badges(attrs hass.Attributes, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == config.AttrCurrentYears {
			if years, ok := attrs.Int(name); ok && years > 0 {
				out = append(out, fmt.Sprintf(config.FormatBadgeYears, config.EmojiCurrentYears, years))
			}
			continue
		}

		value, ok := attrs.String(name)
		if !ok || value == "" {
			continue
		}
		out = append(out, fmt.Sprintf(config.FormatBadge, badgeEmoji(name, value), value))
	}
	return out
}

func badgeEmoji(name, value string) string {
	switch name {
	case config.AttrZodiacSign:
		return ZodiacEmoji(value)
	case config.AttrBirthstone:
		return BirthstoneEmoji(value)
	}
	if e, ok := attributeEmoji[name]; ok {
		return e
	}
	return config.EmojiDefault
}
