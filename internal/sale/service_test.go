package sale_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mecdoors/siteledger/internal/sale"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    sale.CreateParams
		setupMock func(m *sale.MockRepository)
		wantErr   bool
		check     func(t *testing.T, o *sale.Opportunity)
	}

	tests := []testCase{
		{
			name: "Success",
			params: sale.CreateParams{
				Title:               "Steel doors for Nasr City compound",
				PotentialClientName: "New Cairo Developments",
				EstimatedValue:      25_000_000,
				Probability:         60,
				Stage:               sale.StageProposal,
			},
			setupMock: func(m *sale.MockRepository) {
				m.EXPECT().
					CreateOpportunity(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *sale.Opportunity) error {
						o.ID = uuid.New()
						return nil
					})
			},
			check: func(t *testing.T, o *sale.Opportunity) {
				assert.Equal(t, sale.StatusActive, o.Status)
				assert.Equal(t, sale.StageProposal, o.Stage)
			},
		},
		{
			name: "DefaultsStageToLead",
			params: sale.CreateParams{
				Title: "Warehouse shutters",
			},
			setupMock: func(m *sale.MockRepository) {
				m.EXPECT().CreateOpportunity(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, o *sale.Opportunity) {
				assert.Equal(t, sale.StageLead, o.Stage)
			},
		},
		{
			name:    "EmptyTitle",
			params:  sale.CreateParams{},
			wantErr: true,
		},
		{
			name: "ProbabilityOutOfRange",
			params: sale.CreateParams{
				Title:       "Warehouse shutters",
				Probability: 101,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := sale.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := sale.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_List_DefaultsPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	svc := sale.NewService(repo)

	repo.EXPECT().
		ListOpportunities(gomock.Any(), sale.ListFilter{Page: 1, Limit: 50}).
		Return([]*sale.Opportunity{}, 0, nil)

	_, _, err := svc.List(context.Background(), sale.ListFilter{})
	require.NoError(t, err)
}

func TestService_Archive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	svc := sale.NewService(repo)

	id := uuid.New()
	archivedBy := uuid.New()
	params := sale.ArchiveParams{
		ReasonLost: "price",
		Competitor: "Delta Gates",
		ArchivedBy: &archivedBy,
	}

	repo.EXPECT().ArchiveOpportunity(gomock.Any(), id, params).Return(nil)

	require.NoError(t, svc.Archive(context.Background(), id, params))
}

func TestService_Archive_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	svc := sale.NewService(repo)

	id := uuid.New()
	repo.EXPECT().ArchiveOpportunity(gomock.Any(), id, sale.ArchiveParams{}).Return(sale.ErrNotFound)

	err := svc.Archive(context.Background(), id, sale.ArchiveParams{})
	assert.ErrorIs(t, err, sale.ErrNotFound)
}

func TestService_Update_RejectsInvalidProbability(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sale.NewMockRepository(ctrl)
	svc := sale.NewService(repo)

	o := &sale.Opportunity{ID: uuid.New(), Title: "Warehouse shutters", Probability: -5}

	err := svc.Update(context.Background(), o)
	assert.Error(t, err)
}
