package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mecdoors/siteledger/internal/client"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    client.CreateParams
		setupMock func(m *client.MockRepository)
		wantErr   bool
		check     func(t *testing.T, c *client.Client)
	}

	tests := []testCase{
		{
			name: "Success",
			params: client.CreateParams{
				Name: "Mec Doors Co",
				Type: client.TypeMainContractor,
				Contacts: []client.Contact{
					{Name: "Hassan", Position: "Accountant", Department: client.DepartmentAccounts, IsMainContact: true},
				},
			},
			setupMock: func(m *client.MockRepository) {
				m.EXPECT().
					CreateClient(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *client.Client) error {
						c.ID = uuid.New()
						return nil
					})
			},
			check: func(t *testing.T, c *client.Client) {
				require.Len(t, c.Contacts, 1)
				assert.NotEqual(t, uuid.Nil, c.Contacts[0].ID)
			},
		},
		{
			name: "DefaultsTypeToOwner",
			params: client.CreateParams{
				Name: "El Nasr Contracting",
			},
			setupMock: func(m *client.MockRepository) {
				m.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, c *client.Client) {
				assert.Equal(t, client.TypeOwner, c.Type)
			},
		},
		{
			name:    "EmptyName",
			params:  client.CreateParams{},
			wantErr: true,
		},
		{
			name: "TwoMainContacts",
			params: client.CreateParams{
				Name: "Mec Doors Co",
				Contacts: []client.Contact{
					{Name: "Hassan", IsMainContact: true},
					{Name: "Mona", IsMainContact: true},
				},
			},
			wantErr: true,
		},
		{
			name: "RepoError",
			params: client.CreateParams{
				Name: "Mec Doors Co",
			},
			setupMock: func(m *client.MockRepository) {
				m.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := client.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := client.NewService(repo)
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

func TestService_Update_AssignsContactIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := client.NewMockRepository(ctrl)
	svc := client.NewService(repo)

	c := &client.Client{
		ID:   uuid.New(),
		Name: "Mec Doors Co",
		Contacts: []client.Contact{
			{Name: "Hassan", IsMainContact: true},
		},
	}

	repo.EXPECT().UpdateClient(gomock.Any(), c).Return(nil)

	require.NoError(t, svc.Update(context.Background(), c))
	assert.NotEqual(t, uuid.Nil, c.Contacts[0].ID)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := client.NewMockRepository(ctrl)
	svc := client.NewService(repo)

	filter := client.ListFilter{Search: "mec"}
	repo.EXPECT().
		ListClients(gomock.Any(), filter).
		Return([]*client.Client{{ID: uuid.New()}}, nil)

	got, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
