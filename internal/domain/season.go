package domain

// SeasonOf maps a month number onto its season. Callers validate the 1-12
// range; anything outside the Winter, Summer and Monsoon sets is
// Post-Monsoon.
func SeasonOf(month int) Season {
	switch month {
	case 12, 1, 2:
		return SeasonWinter
	case 3, 4, 5:
		return SeasonSummer
	case 6, 7, 8, 9:
		return SeasonMonsoon
	default:
		return SeasonPostMonsoon
	}
}

// ValidMonth reports whether m is a calendar month number.
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}
