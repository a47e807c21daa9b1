package discount

import "github.com/joao-fontenele/storefront/internal/domain"

type Eligibility struct {
	Eligible bool                 `json:"isEligible"`
	Code     *domain.DiscountCode `json:"discountCode,omitempty"`
}

// CheckEligibilityAndIssue applies the cadence to the user's own order count,
// not the store-wide count used at checkout. When the user is eligible it
// hands out the first available code, minting one into snap only if none is
// left. minted reports whether snap changed.
func (e *Engine) CheckEligibilityAndIssue(snap *domain.Snapshot, user *domain.User) (Eligibility, bool, error) {
	if !Due(len(user.Orders), snap.DiscountOrder) {
		return Eligibility{}, false, nil
	}

	for i := range snap.DiscountCodes {
		if snap.DiscountCodes[i].IsAvailable {
			code := snap.DiscountCodes[i]
			return Eligibility{Eligible: true, Code: &code}, false, nil
		}
	}

	code, err := e.mint(snap.DiscountCodes)
	if err != nil {
		return Eligibility{}, false, err
	}
	snap.DiscountCodes = append(snap.DiscountCodes, code)

	return Eligibility{Eligible: true, Code: &code}, true, nil
}
