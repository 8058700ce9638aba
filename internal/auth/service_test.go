package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/mecdoors/siteledger/internal/auth"
)

const testSecret = "test-signing-secret"

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &auth.User{
		ID:           uuid.New(),
		Username:     "admin",
		Email:        "admin@mecdoors.com",
		PasswordHash: string(hash),
		FullName:     "System Administrator",
		Role:         auth.RoleAdmin,
		IsActive:     true,
	}
}

func TestService_Login(t *testing.T) {
	type testCase struct {
		name      string
		username  string
		password  string
		setupMock func(t *testing.T, m *auth.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			username: "admin",
			password: "secret123",
			setupMock: func(t *testing.T, m *auth.MockRepository) {
				u := activeUser(t, "secret123")
				m.EXPECT().GetUserByUsername(gomock.Any(), "admin").Return(u, nil)
				m.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().TouchLastLogin(gomock.Any(), u.ID, gomock.Any()).Return(nil)
			},
		},
		{
			name:     "WrongPassword",
			username: "admin",
			password: "nope",
			setupMock: func(t *testing.T, m *auth.MockRepository) {
				m.EXPECT().GetUserByUsername(gomock.Any(), "admin").Return(activeUser(t, "secret123"), nil)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "UnknownUser",
			username: "ghost",
			password: "secret123",
			setupMock: func(t *testing.T, m *auth.MockRepository) {
				m.EXPECT().GetUserByUsername(gomock.Any(), "ghost").Return(nil, auth.ErrNotFound)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "InactiveUser",
			username: "admin",
			password: "secret123",
			setupMock: func(t *testing.T, m *auth.MockRepository) {
				u := activeUser(t, "secret123")
				u.IsActive = false
				m.EXPECT().GetUserByUsername(gomock.Any(), "admin").Return(u, nil)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "EmptyCredentials",
			username: "",
			password: "",
			wantErr:  auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := auth.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(t, repo)
			}

			svc := auth.NewService(repo, testSecret)
			got, err := svc.Login(context.Background(), tt.username, tt.password, "127.0.0.1", "test-agent")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.Token)
			assert.NotNil(t, got.User.LastLogin)
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), got.ExpiresAt, time.Minute)
		})
	}
}

func TestService_Authenticate_RoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := auth.NewMockRepository(ctrl)
	svc := auth.NewService(repo, testSecret)

	u := activeUser(t, "secret123")

	var saved *auth.Session

	repo.EXPECT().GetUserByUsername(gomock.Any(), "admin").Return(u, nil)
	repo.EXPECT().
		CreateSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *auth.Session) error {
			saved = s
			return nil
		})
	repo.EXPECT().TouchLastLogin(gomock.Any(), u.ID, gomock.Any()).Return(nil)

	result, err := svc.Login(context.Background(), "admin", "secret123", "127.0.0.1", "test-agent")
	require.NoError(t, err)
	require.NotNil(t, saved)

	repo.EXPECT().GetSession(gomock.Any(), saved.TokenHash).Return(saved, nil)
	repo.EXPECT().GetUser(gomock.Any(), u.ID).Return(u, nil)

	got, err := svc.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestService_Authenticate_Rejections(t *testing.T) {
	t.Run("TamperedToken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := auth.NewMockRepository(ctrl)
		svc := auth.NewService(repo, testSecret)

		_, err := svc.Authenticate(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, auth.ErrSessionInvalid)
	})

	t.Run("SessionRowGone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := auth.NewMockRepository(ctrl)
		svc := auth.NewService(repo, testSecret)

		u := activeUser(t, "secret123")
		repo.EXPECT().GetUserByUsername(gomock.Any(), "admin").Return(u, nil)
		repo.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().TouchLastLogin(gomock.Any(), u.ID, gomock.Any()).Return(nil)

		result, err := svc.Login(context.Background(), "admin", "secret123", "", "")
		require.NoError(t, err)

		repo.EXPECT().GetSession(gomock.Any(), gomock.Any()).Return(nil, auth.ErrNotFound)

		_, err = svc.Authenticate(context.Background(), result.Token)
		assert.ErrorIs(t, err, auth.ErrSessionInvalid)
	})
}

func TestService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := auth.NewMockRepository(ctrl)
	svc := auth.NewService(repo, testSecret)

	admin := activeUser(t, "secret123")

	repo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *auth.User) error {
			u.ID = uuid.New()
			return nil
		})

	got, err := svc.Register(context.Background(), admin, auth.RegisterParams{
		Username: "engineer1",
		Email:    "engineer1@mecdoors.com",
		Password: "changeme",
		FullName: "Site Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, got.Role)
	assert.True(t, got.IsActive)
	assert.NotEqual(t, "changeme", got.PasswordHash)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, admin.ID, *got.CreatedBy)
}

func TestService_Register_RequiresAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := auth.NewMockRepository(ctrl)
	svc := auth.NewService(repo, testSecret)

	actor := activeUser(t, "secret123")
	actor.Role = auth.RoleUser

	_, err := svc.Register(context.Background(), actor, auth.RegisterParams{
		Username: "x", Email: "x@y.z", Password: "p", FullName: "X",
	})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := auth.NewMockRepository(ctrl)
	svc := auth.NewService(repo, testSecret)

	repo.EXPECT().DeleteSession(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), "some-token"))
}
