package application

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tradesync/config"
	"github.com/oksasatya/tradesync/internal/application/apptest"
	"github.com/oksasatya/tradesync/pkg/helpers"
	"github.com/oksasatya/tradesync/pkg/mailer"
	"github.com/oksasatya/tradesync/pkg/mailer/templates"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, body any) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newAuthService(pub JobPublisher, mailEnabled bool) (*AuthService, *apptest.Users, *helpers.JWTManager) {
	users := apptest.NewUsers()
	jwt := helpers.NewJWTManager("test-secret", 0)
	cfg := &config.Config{AppName: "TradeSync", MailSendEnabled: mailEnabled}
	return NewAuthService(users, jwt, pub, cfg, quietLogger()), users, jwt
}

func TestRegister_IssuesVerifiableToken(t *testing.T) {
	svc, _, jwt := newAuthService(nil, false)

	res, err := svc.Register(context.Background(), "Ann", "ann@x.io", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, res.User.ID)

	id, err := jwt.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
	assert.NotEqual(t, "pw1", res.User.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(res.User.PasswordHash, "pw1"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, users, _ := newAuthService(nil, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ann", "ann@x.io", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "ann@x.io", "pw2")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, 1, users.Count())
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, _, _ := newAuthService(nil, false)
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ann", "ann@x.io", "pw1")
	require.NoError(t, err)

	_, errUnknown := svc.Login(ctx, "nobody@x.io", "pw1", RequestMeta{})
	_, errWrong := svc.Login(ctx, "ann@x.io", "nope", RequestMeta{})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)

	res, err := svc.Login(ctx, "ann@x.io", "pw1", RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Ann", res.User.FullName)
}

func TestRegisterAndLogin_PublishEmailJobs(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishJSON", mock.Anything, mock.MatchedBy(func(j mailer.EmailJob) bool {
		return j.To == "ann@x.io" && j.Template == templates.Welcome
	})).Return(nil).Once()
	pub.On("PublishJSON", mock.Anything, mock.MatchedBy(func(j mailer.EmailJob) bool {
		return j.Template == templates.LoginNotification && j.Data["IP"] == "10.0.0.1"
	})).Return(errors.New("broker down")).Once()

	svc, _, _ := newAuthService(pub, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ann", "ann@x.io", "pw1")
	require.NoError(t, err)
	// publish failures never fail the login
	_, err = svc.Login(ctx, "ann@x.io", "pw1", RequestMeta{IP: "10.0.0.1", UserAgent: "cli"})
	require.NoError(t, err)

	pub.AssertExpectations(t)
}

func TestRegister_MailDisabledSkipsPublish(t *testing.T) {
	pub := new(MockPublisher)
	svc, _, _ := newAuthService(pub, false)

	_, err := svc.Register(context.Background(), "Ann", "ann@x.io", "pw1")
	require.NoError(t, err)
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestMe(t *testing.T) {
	svc, _, _ := newAuthService(nil, false)
	ctx := context.Background()
	res, err := svc.Register(ctx, "Ann", "ann@x.io", "pw1")
	require.NoError(t, err)

	u, err := svc.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", u.Email)

	_, err = svc.Me(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
