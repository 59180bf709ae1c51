package models

import "strings"

// BloodType is one of the eight ABO/Rh groups.
type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// BloodTypes lists every group in display order.
var BloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg,
	BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg,
	BloodTypeOPos, BloodTypeONeg,
}

// ParseBloodType accepts exactly the enumerated spellings.
func ParseBloodType(s string) (BloodType, bool) {
	for _, bt := range BloodTypes {
		if string(bt) == s {
			return bt, true
		}
	}
	return "", false
}

func (b BloodType) String() string { return string(b) }

func bloodTypeList() string {
	names := make([]string, len(BloodTypes))
	for i, bt := range BloodTypes {
		names[i] = string(bt)
	}
	return strings.Join(names, ", ")
}
