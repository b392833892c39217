package domain

// Departments is the closed enumeration of campus departments an issue
// may be filed against.
var Departments = []string{
	"Computer Engineering",
	"Electronics Engineering",
	"Mechanical Engineering",
	"Civil Engineering",
	"Information Technology",
	"Applied Sciences",
	"Administration Office",
	"Library",
	"Hostel",
	"Canteen",
	"Sports Department",
	"Placement Cell",
	"Other",
}

// ValidDepartment reports membership in the department enumeration.
func ValidDepartment(name string) bool {
	for _, d := range Departments {
		if d == name {
			return true
		}
	}
	return false
}
