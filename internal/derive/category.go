package derive

// Labels for I-94 mode-of-travel codes.
const (
	TravelAir         = "Air"
	TravelSea         = "Sea"
	TravelLand        = "Land"
	TravelNotReported = "Not Reported"
)

// Labels for I-94 visa category codes.
const (
	VisaBusiness = "Business"
	VisaPleasure = "Pleasure"
	VisaStudent  = "Student"
	VisaUnknown  = "Unknown"
)

// TravelMode maps an i94mode code to its label. Every input, including nil and codes
// outside 1-3, maps to a label.
func TravelMode(code *float64) string {
	if code == nil {
		return TravelNotReported
	}
	switch *code {
	case 1:
		return TravelAir
	case 2:
		return TravelSea
	case 3:
		return TravelLand
	default:
		return TravelNotReported
	}
}

// VisaCategory maps an i94visa code to its label. Unmatched codes map to VisaUnknown.
func VisaCategory(code *float64) string {
	if code == nil {
		return VisaUnknown
	}
	switch *code {
	case 1:
		return VisaBusiness
	case 2:
		return VisaPleasure
	case 3:
		return VisaStudent
	default:
		return VisaUnknown
	}
}
