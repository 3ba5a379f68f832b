package dispatch

import "raktsetu/core/model"

// DonorFilter narrows the donor pool to those eligible for a request.
type DonorFilter interface {
	Filter(donors []model.Donor, bt model.BloodType) []model.Donor
}

// ExactMatchFilter keeps active donors whose blood type matches the request
// exactly. No cross-type compatibility is applied: a request for O- does not
// pull O+ donors. An inactive donor is never eligible.
type ExactMatchFilter struct{}

func (ExactMatchFilter) Filter(donors []model.Donor, bt model.BloodType) []model.Donor {
	var res []model.Donor
	for _, d := range donors {
		if !d.Active {
			continue
		}
		if d.BloodType == bt {
			res = append(res, d)
		}
	}
	return res
}
