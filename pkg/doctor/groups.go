package doctor

// GroupDefinition declares which checks belong to a group.
type GroupDefinition struct {
	ID          string
	Name        string
	Description string
	CheckIDs    []string
}

// groupDefinitions lists all check groups in display order.
var groupDefinitions = []GroupDefinition{
	{
		ID:          GroupPackaging,
		Name:        "Packaging",
		Description: "OS package installation",
		CheckIDs:    []string{IDAptGet},
	},
	{
		ID:          GroupPython,
		Name:        "Python",
		Description: "Interpreter and virtual environment support",
		CheckIDs:    []string{IDPython3, IDVenv},
	},
	{
		ID:          GroupSystemd,
		Name:        "Systemd",
		Description: "Service registration",
		CheckIDs:    []string{IDSystemctl, IDUnitDir},
	},
}

// GetGroups returns all group definitions.
func GetGroups() []GroupDefinition {
	return groupDefinitions
}

// GetGroupDefinition returns the definition for a group ID.
func GetGroupDefinition(id string) (GroupDefinition, bool) {
	for _, def := range groupDefinitions {
		if def.ID == id {
			return def, true
		}
	}
	return GroupDefinition{}, false
}
