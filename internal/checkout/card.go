package checkout

// ValidCardNumber runs the standard mod-10 checksum over the card
// number: strip non-digits, require at least 13 digits, double every
// second digit from the right (subtracting 9 from results over 9) and
// require the sum to be a multiple of 10.
func ValidCardNumber(num string) bool {
	var digits []int
	for _, r := range num {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 {
		return false
	}

	var sum int
	for i := 0; i < len(digits); i++ {
		d := digits[len(digits)-1-i]
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
