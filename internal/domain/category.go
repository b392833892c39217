package domain

// Categories is the closed enumeration of feedback categories.
var Categories = []string{
	"Academics",
	"Infrastructure",
	"Technology",
	"Administration",
	"Transport & Access",
	"Library & Resources",
	"Safety & Welfare",
	"Student Life",
	"Others",
}

// ValidCategory reports membership in the category enumeration.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
