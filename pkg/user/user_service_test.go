package user_test

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/prodgeti/foodgram/domain"
	"github.com/prodgeti/foodgram/entities"
	"github.com/prodgeti/foodgram/pkg/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u *entities.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetUsers(ctx context.Context, page, limit int) ([]*entities.User, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, u *entities.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) CreateSubscription(ctx context.Context, sub *entities.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) DeleteSubscription(ctx context.Context, followerID, publisherID string) (int64, error) {
	args := m.Called(ctx, followerID, publisherID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepository) IsSubscribed(ctx context.Context, followerID, publisherID string) (bool, error) {
	args := m.Called(ctx, followerID, publisherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) GetPublishers(ctx context.Context, followerID string, page, limit int) ([]*entities.User, int64, error) {
	args := m.Called(ctx, followerID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Get(1).(int64), args.Error(2)
}

type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenUser(userId string, role string) string {
	args := m.Called(userId, role)
	return args.String(0)
}

func (m *MockJWTService) ValidateTokenUser(token string) (*jwtlib.Token, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwtlib.Token), args.Error(1)
}

func (m *MockJWTService) GetUserIDByToken(token string) (string, string, error) {
	args := m.Called(token)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockJWTService) GenerateTokenForgetPassword(data map[string]any, duration time.Duration) (string, error) {
	args := m.Called(data, duration)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateTokenForgetPassword(token string) (jwtlib.MapClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(jwtlib.MapClaims), args.Error(1)
}

type MockAwsS3 struct {
	mock.Mock
}

func (m *MockAwsS3) UploadFile(fileName string, data []byte, contentType, dir string, allowed ...string) (string, error) {
	args := m.Called(fileName, data, contentType, dir, allowed)
	return args.String(0), args.Error(1)
}

func (m *MockAwsS3) DeleteFile(objectKey string) error {
	args := m.Called(objectKey)
	return args.Error(0)
}

func (m *MockAwsS3) GetObjectKeyFromLink(link string) string {
	args := m.Called(link)
	return args.String(0)
}

func (m *MockAwsS3) GetPublicLinkKey(objectKey string) string {
	args := m.Called(objectKey)
	return args.String(0)
}

type userMocks struct {
	repo *MockUserRepository
	subs *MockSubscriptionRepository
	jwt  *MockJWTService
	s3   *MockAwsS3
}

func newService() (user.UserService, *userMocks) {
	m := &userMocks{
		repo: new(MockUserRepository),
		subs: new(MockSubscriptionRepository),
		jwt:  new(MockJWTService),
		s3:   new(MockAwsS3),
	}
	return user.NewUserService(m.repo, m.subs, m.jwt, m.s3), m
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, mocks := newService()

	mocks.repo.On("GetUserByEmail", mock.Anything, "taken@example.com").
		Return(&entities.User{ID: uuid.New()}, nil).Once()

	_, err := service.Register(context.Background(), domain.RegisterRequest{
		Email:    "taken@example.com",
		Username: "newbie",
		Password: "password123",
	})

	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	mocks.repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	service, mocks := newService()

	mocks.repo.On("GetUserByEmail", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound).Once()
	mocks.repo.On("GetUserByUsername", mock.Anything, "taken").
		Return(&entities.User{ID: uuid.New()}, nil).Once()

	_, err := service.Register(context.Background(), domain.RegisterRequest{
		Email:    "fresh@example.com",
		Username: "taken",
		Password: "password123",
	})

	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)
}

func TestRegister_Success(t *testing.T) {
	service, mocks := newService()

	mocks.repo.On("GetUserByEmail", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound).Once()
	mocks.repo.On("GetUserByUsername", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound).Once()

	var created *entities.User
	mocks.repo.On("CreateUser", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entities.User)
		}).
		Return(nil).Once()

	res, err := service.Register(context.Background(), domain.RegisterRequest{
		Email:     "fresh@example.com",
		Username:  "newbie",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Password:  "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "newbie", res.Username)
	assert.NotNil(t, created)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))
}

func TestLogin_WrongPassword(t *testing.T) {
	service, mocks := newService()

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	mocks.repo.On("GetUserByEmail", mock.Anything, "user@example.com").
		Return(&entities.User{ID: uuid.New(), Password: string(hashed)}, nil).Once()

	_, err = service.Login(context.Background(), domain.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
	mocks.jwt.AssertNotCalled(t, "GenerateTokenUser", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	service, mocks := newService()

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	u := &entities.User{ID: uuid.New(), Password: string(hashed), Role: domain.RoleUser}

	mocks.repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(u, nil).Once()
	mocks.jwt.On("GenerateTokenUser", u.ID.String(), domain.RoleUser).Return("signed-token").Once()

	res, err := service.Login(context.Background(), domain.LoginRequest{
		Email:    "user@example.com",
		Password: "correct-password",
	})

	assert.NoError(t, err)
	assert.Equal(t, "signed-token", res.Token)
}

func TestDeleteAvatar_NotSet(t *testing.T) {
	service, mocks := newService()

	u := &entities.User{ID: uuid.New()}
	mocks.repo.On("GetUserByID", mock.Anything, u.ID.String()).Return(u, nil).Once()

	err := service.DeleteAvatar(context.Background(), u.ID.String())

	assert.ErrorIs(t, err, domain.ErrAvatarNotSet)
	mocks.repo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestGetUserByID_AnnotatesSubscription(t *testing.T) {
	service, mocks := newService()

	viewer := uuid.NewString()
	target := &entities.User{ID: uuid.New(), Username: "chef"}

	mocks.repo.On("GetUserByID", mock.Anything, target.ID.String()).Return(target, nil).Once()
	mocks.subs.On("IsSubscribed", mock.Anything, viewer, target.ID.String()).Return(true, nil).Once()

	res, err := service.GetUserByID(context.Background(), target.ID.String(), viewer)

	assert.NoError(t, err)
	assert.True(t, res.IsSubscribed)
}
