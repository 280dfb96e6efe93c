package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"studiobooking/internal/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 7
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type fakeJWT struct{}

func (fakeJWT) GenerateToken(userID int64, role string) (string, error) {
	return "token", nil
}

func TestRegister_NormalizesEmailAndHashesPassword(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewService(users, fakeJWT{})

	users.On("GetByEmail", mock.Anything, "kata@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		if u.Email != "kata@example.com" || u.Role != domain.RoleCustomer {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("titkos123")) == nil
	})).Return(nil)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Kata",
		Email:    "  Kata@Example.com ",
		Password: "titkos123",
	})

	assert.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, int64(7), user.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewService(users, fakeJWT{})

	users.On("GetByEmail", mock.Anything, "kata@example.com").Return(&domain.User{ID: 1}, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Kata",
		Email:    "kata@example.com",
		Password: "titkos123",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewService(users, fakeJWT{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("titkos123"), bcrypt.DefaultCost)
	users.On("GetByEmail", mock.Anything, "kata@example.com").Return(&domain.User{
		ID:           7,
		Email:        "kata@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}, nil)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "kata@example.com", Password: "titkos123"})

	assert.NoError(t, err)
	assert.Equal(t, "token", result.AccessToken)
	assert.Empty(t, result.User.PasswordHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewService(users, fakeJWT{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("titkos123"), bcrypt.DefaultCost)
	users.On("GetByEmail", mock.Anything, "kata@example.com").Return(&domain.User{
		PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "kata@example.com", Password: "rossz"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewService(users, fakeJWT{})

	users.On("GetByEmail", mock.Anything, "senki@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "senki@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
