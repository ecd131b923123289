package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	customjwt "github.com/magabrotheeeer/event-ticketing/internal/lib/jwt"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/password"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
	"github.com/magabrotheeeer/event-ticketing/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUserProfile(ctx context.Context, id, name, email, role string) (*models.User, error) {
	args := m.Called(ctx, id, name, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) SetActiveRole(ctx context.Context, id, activeRole string) (*models.User, error) {
	args := m.Called(ctx, id, activeRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userID, name, role string) (string, error) {
	args := m.Called(userID, name, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantRole   string
		wantErr    error
	}{
		{
			name: "default role is user",
			role: "",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						user.PasswordHash != "" &&
						user.Role == models.RoleUser &&
						user.ActiveRole == models.RoleUser
				})).Return("id-1", nil).Once()
				j.On("GenerateToken", "id-1", "testuser", models.RoleUser).
					Return("jwt-token-123", nil).Once()
			},
			wantRole: models.RoleUser,
		},
		{
			name: "organizer registration keeps user mode active",
			role: models.RoleOrganizer,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Role == models.RoleOrganizer &&
						user.ActiveRole == models.RoleUser
				})).Return("id-2", nil).Once()
				j.On("GenerateToken", "id-2", "testuser", models.RoleOrganizer).
					Return("jwt-token-456", nil).Once()
			},
			wantRole: models.RoleOrganizer,
		},
		{
			name:       "admin role is rejected",
			role:       models.RoleAdmin,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {},
			wantErr:    apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := auth.New(repo, jwtMock)

			tt.setupMocks(repo, jwtMock)

			user, token, err := svc.Register(context.Background(),
				"testuser", "test@example.com", "password123", tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.wantRole, user.Role)
				assert.Equal(t, models.RoleUser, user.ActiveRole)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	testUser := &models.User{
		ID:           "id-1",
		Name:         "testuser",
		Email:        "test@example.com",
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
				j.On("GenerateToken", "id-1", "testuser", models.RoleUser).Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "user not found",
			email:    "nonexistent@example.com",
			password: "password",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "nonexistent@example.com").
					Return(nil, apperrors.ErrNotFound).Once()
			},
			wantErr: apperrors.ErrUnauthorized,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
			},
			wantErr: apperrors.ErrUnauthorized,
		},
		{
			name:     "token generation error",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
				j.On("GenerateToken", "id-1", "testuser", models.RoleUser).
					Return("", errors.New("token error")).Once()
			},
			wantErr: errors.New("token error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := auth.New(repo, jwtMock)

			tt.setupMocks(repo, jwtMock)

			user, token, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, testUser.Email, user.Email)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestService_UpdateProfile(t *testing.T) {
	tests := []struct {
		name       string
		caller     models.Identity
		role       string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:   "user updates own name",
			caller: models.Identity{UserID: "id-1", Role: models.RoleUser},
			setupMocks: func(r *UserRepoMock) {
				r.On("UpdateUserProfile", mock.Anything, "id-1", "renamed", "", "").
					Return(&models.User{ID: "id-1", Name: "renamed"}, nil).Once()
			},
		},
		{
			name:       "non-admin cannot change role",
			caller:     models.Identity{UserID: "id-1", Role: models.RoleOrganizer},
			role:       models.RoleAdmin,
			setupMocks: func(r *UserRepoMock) {},
			wantErr:    apperrors.ErrForbidden,
		},
		{
			name:   "admin changes role",
			caller: models.Identity{UserID: "id-2", Role: models.RoleAdmin},
			role:   models.RoleOrganizer,
			setupMocks: func(r *UserRepoMock) {
				r.On("UpdateUserProfile", mock.Anything, "id-2", "renamed", "", models.RoleOrganizer).
					Return(&models.User{ID: "id-2", Role: models.RoleOrganizer}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc := auth.New(repo, new(JwtMakerMock))

			tt.setupMocks(repo)

			_, err := svc.UpdateProfile(context.Background(), tt.caller, "renamed", "", tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_SwitchRole(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:   "organizer switches to organizer mode",
			target: models.RoleOrganizer,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByID", mock.Anything, "id-1").
					Return(&models.User{ID: "id-1", Role: models.RoleOrganizer, ActiveRole: models.RoleUser}, nil).Once()
				r.On("SetActiveRole", mock.Anything, "id-1", models.RoleOrganizer).
					Return(&models.User{ID: "id-1", Role: models.RoleOrganizer, ActiveRole: models.RoleOrganizer}, nil).Once()
			},
		},
		{
			name:   "plain user cannot switch to organizer mode",
			target: models.RoleOrganizer,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByID", mock.Anything, "id-1").
					Return(&models.User{ID: "id-1", Role: models.RoleUser, ActiveRole: models.RoleUser}, nil).Once()
			},
			wantErr: apperrors.ErrForbidden,
		},
		{
			name:   "anyone can switch back to user mode",
			target: models.RoleUser,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByID", mock.Anything, "id-1").
					Return(&models.User{ID: "id-1", Role: models.RoleUser, ActiveRole: models.RoleUser}, nil).Once()
				r.On("SetActiveRole", mock.Anything, "id-1", models.RoleUser).
					Return(&models.User{ID: "id-1", Role: models.RoleUser, ActiveRole: models.RoleUser}, nil).Once()
			},
		},
		{
			name:       "admin is not a valid active mode",
			target:     models.RoleAdmin,
			setupMocks: func(r *UserRepoMock) {},
			wantErr:    apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc := auth.New(repo, new(JwtMakerMock))

			tt.setupMocks(repo)

			caller := models.Identity{UserID: "id-1", Role: models.RoleUser}
			_, err := svc.SwitchRole(context.Background(), caller, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}
