package model

import "fmt"

// BloodType identifies one of the eight ABO/Rh blood groups.
type BloodType int

const (
	OPositive BloodType = iota
	ONegative
	APositive
	ANegative
	BPositive
	BNegative
	ABPositive
	ABNegative
)

// String returns the normalized code for the blood type.
func (b BloodType) String() string {
	switch b {
	case OPositive:
		return "O+"
	case ONegative:
		return "O-"
	case APositive:
		return "A+"
	case ANegative:
		return "A-"
	case BPositive:
		return "B+"
	case BNegative:
		return "B-"
	case ABPositive:
		return "AB+"
	case ABNegative:
		return "AB-"
	default:
		return "unknown"
	}
}

// ParseBloodType converts a normalized code such as "O+" into a BloodType.
func ParseBloodType(s string) (BloodType, error) {
	switch s {
	case "O+":
		return OPositive, nil
	case "O-":
		return ONegative, nil
	case "A+":
		return APositive, nil
	case "A-":
		return ANegative, nil
	case "B+":
		return BPositive, nil
	case "B-":
		return BNegative, nil
	case "AB+":
		return ABPositive, nil
	case "AB-":
		return ABNegative, nil
	default:
		return 0, fmt.Errorf("unknown blood type %q", s)
	}
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks the pair is within valid geographic bounds.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90,90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180,180]", c.Lon)
	}
	return nil
}

// Donor represents a registered blood donor. The dispatch engine treats
// donors as read-only; registration and profile updates happen elsewhere.
type Donor struct {
	ID        string
	Name      string
	Phone     string
	BloodType BloodType
	Location  Coordinates
	Active    bool // whether the donor can currently be considered for dispatch
	// Notify reflects the donor's notification preference. A selected donor
	// with Notify false still receives a decision record but no message.
	Notify bool
}

// Validate checks that the donor carries usable coordinates.
func (d Donor) Validate() error {
	if err := d.Location.Validate(); err != nil {
		return fmt.Errorf("donor %s: %w", d.ID, err)
	}
	return nil
}
