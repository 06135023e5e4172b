package services

import (
	"testing"

	"garagehub/internal/common"
	"garagehub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanMutateJobCard(t *testing.T) {
	mechanicID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name      string
		principal models.Principal
		jobcard   *models.JobCard
		wantErr   error
	}{
		{
			name:      "admin can mutate any card",
			principal: models.Principal{ID: uuid.New(), Role: models.RoleAdmin},
			jobcard:   &models.JobCard{MechanicID: &otherID},
			wantErr:   nil,
		},
		{
			name:      "mechanic can mutate own card",
			principal: models.Principal{ID: mechanicID, Role: models.RoleMechanic},
			jobcard:   &models.JobCard{MechanicID: &mechanicID},
			wantErr:   nil,
		},
		{
			name:      "mechanic cannot mutate another mechanic's card",
			principal: models.Principal{ID: mechanicID, Role: models.RoleMechanic},
			jobcard:   &models.JobCard{MechanicID: &otherID},
			wantErr:   common.ErrForbidden,
		},
		{
			name:      "mechanic cannot mutate unassigned card",
			principal: models.Principal{ID: mechanicID, Role: models.RoleMechanic},
			jobcard:   &models.JobCard{},
			wantErr:   common.ErrForbidden,
		},
		{
			name:      "customer cannot mutate",
			principal: models.Principal{ID: mechanicID, Role: models.RoleCustomer},
			jobcard:   &models.JobCard{MechanicID: &mechanicID},
			wantErr:   common.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := canMutateJobCard(tt.principal, tt.jobcard)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
