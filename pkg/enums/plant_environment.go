package enums

import "fmt"

// PlantEnvironment records where a plant product can live.
type PlantEnvironment string

const (
	PlantEnvironmentIndoor  PlantEnvironment = "indoor"
	PlantEnvironmentOutdoor PlantEnvironment = "outdoor"
	PlantEnvironmentBoth    PlantEnvironment = "both"
)

var validPlantEnvironments = []PlantEnvironment{
	PlantEnvironmentIndoor,
	PlantEnvironmentOutdoor,
	PlantEnvironmentBoth,
}

// String implements fmt.Stringer.
func (p PlantEnvironment) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlantEnvironment.
func (p PlantEnvironment) IsValid() bool {
	for _, candidate := range validPlantEnvironments {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlantEnvironment converts raw input into a PlantEnvironment.
func ParsePlantEnvironment(value string) (PlantEnvironment, error) {
	for _, candidate := range validPlantEnvironments {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plant environment %q", value)
}
