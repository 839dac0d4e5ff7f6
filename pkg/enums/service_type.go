package enums

import "fmt"

// ServiceType enumerates the roadside services a customer can request.
type ServiceType string

const (
	ServiceTypeAccident  ServiceType = "accident"
	ServiceTypeBreakdown ServiceType = "breakdown"
	ServiceTypeStuck     ServiceType = "stuck"
	ServiceTypeBattery   ServiceType = "battery"
	ServiceTypeFlatTire  ServiceType = "flatTire"
	ServiceTypeOutOfGas  ServiceType = "outOfGas"
	ServiceTypeOther     ServiceType = "other"
)

var validServiceTypes = []ServiceType{
	ServiceTypeAccident,
	ServiceTypeBreakdown,
	ServiceTypeStuck,
	ServiceTypeBattery,
	ServiceTypeFlatTire,
	ServiceTypeOutOfGas,
	ServiceTypeOther,
}

// String implements fmt.Stringer.
func (s ServiceType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceType.
func (s ServiceType) IsValid() bool {
	for _, candidate := range validServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceType converts raw input into a ServiceType.
func ParseServiceType(value string) (ServiceType, error) {
	for _, candidate := range validServiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service type %q", value)
}
