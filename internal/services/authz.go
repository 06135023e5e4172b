package services

import (
	"garagehub/internal/common"
	"garagehub/internal/models"
)

// canMutateJobCard enforces the ownership rule for job card mutations:
// admins may touch any card, a mechanic only the cards assigned to them.
// Everyone else is refused outright.
func canMutateJobCard(p models.Principal, jc *models.JobCard) error {
	if p.IsAdmin() {
		return nil
	}
	if p.IsMechanic() && jc.MechanicID != nil && *jc.MechanicID == p.ID {
		return nil
	}
	return common.ErrForbidden
}
