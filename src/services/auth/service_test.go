package auth

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"Backend-PMS/src/config"
	"Backend-PMS/src/logger"
	"Backend-PMS/src/models"
	"Backend-PMS/src/services/accounts"
	"Backend-PMS/src/services/activity"
	"Backend-PMS/src/services/mail"
	"Backend-PMS/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendResetMail(_ context.Context, p mail.ResetMailPayload) error {
	return m.Called(p).Error(0)
}

type testEnv struct {
	svc      *Service
	store    *accounts.MemoryStore
	events   *activity.MemoryEventStore
	recorder *activity.Recorder
	jwt      *utils.JWTManager
	hashes   *atomic.Int32
}

type envOption func(*config.Auth, *Deps)

func withMailer(m mail.ResetMailer) envOption {
	return func(_ *config.Auth, d *Deps) { d.Mailer = m }
}

func withLegacyPlaintext() envOption {
	return func(c *config.Auth, _ *Deps) { c.LegacyPlaintext = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	store := accounts.NewMemoryStore()
	events := activity.NewMemoryEventStore()
	recorder := activity.NewRecorder(events, logger.Nop(), nil, time.Second)
	jwt := utils.NewJWTManager("test-secret", time.Hour)

	cfg := config.Auth{BcryptCost: bcrypt.MinCost, ResetPasswordExpireMin: 15}
	deps := Deps{Store: store, Sessions: jwt, Recorder: recorder, Logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	svc := NewService(cfg, "http://app.test/", deps)
	hashes := &atomic.Int32{}
	svc.hasher.generate = func(password []byte, cost int) ([]byte, error) {
		hashes.Add(1)
		return bcrypt.GenerateFromPassword(password, cost)
	}

	t.Cleanup(recorder.Wait)
	return &testEnv{svc: svc, store: store, events: events, recorder: recorder, jwt: jwt, hashes: hashes}
}

func (e *testEnv) register(t *testing.T, role models.Role, email, password string) models.Account {
	t.Helper()
	acc := models.NewAccount(role)
	acc.Base().Email = email
	acc.Base().Name = "Test User"
	created, err := e.svc.Register(context.Background(), role, acc, password)
	require.NoError(t, err)
	return created
}

func (e *testEnv) storedPassword(t *testing.T, role models.Role, email string) string {
	t.Helper()
	acc, err := e.store.FindByEmail(context.Background(), role, email, true)
	require.NoError(t, err)
	return acc.Base().Password
}

// consumingStore runs onLookup once, right after a reset token lookup succeeds.
type consumingStore struct {
	accounts.Store
	onLookup func(acc models.Account)
}

func (s *consumingStore) FindByResetToken(ctx context.Context, role models.Role, digest string, now time.Time) (models.Account, error) {
	acc, err := s.Store.FindByResetToken(ctx, role, digest, now)
	if err == nil && s.onLookup != nil {
		hook := s.onLookup
		s.onLookup = nil
		hook(acc)
	}
	return acc, err
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("TestStoresHashAndStripsIt", func(t *testing.T) {
		env := newTestEnv(t)
		created := env.register(t, models.RoleStudent, " A@X.com ", "P1")

		assert.Empty(t, created.Base().Password)
		assert.Equal(t, "a@x.com", created.Base().Email)
		assert.Equal(t, models.RoleStudent, created.Base().Role)

		stored := env.storedPassword(t, models.RoleStudent, "a@x.com")
		assert.NotEqual(t, "P1", stored)
		assert.True(t, IsHashed(stored))
		assert.True(t, env.svc.hasher.Verify("P1", stored))
		assert.Equal(t, int32(1), env.hashes.Load())
	})

	t.Run("TestRecordsSignup", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, models.RoleFaculty, "f@x.com", "P1")
		env.recorder.Wait()

		events := env.events.Events()
		require.Len(t, events, 1)
		assert.Equal(t, models.ActivitySignup, events[0].Activity)
		assert.Equal(t, models.RoleFaculty, events[0].Role)
	})

	t.Run("TestDuplicateAcrossRoles", func(t *testing.T) {
		for _, first := range models.Roles {
			for _, second := range models.Roles {
				if first == second {
					continue
				}
				env := newTestEnv(t)
				env.register(t, first, "e@x.com", "P1")

				acc := models.NewAccount(second)
				acc.Base().Email = "E@x.com"
				_, err := env.svc.Register(ctx, second, acc, "P2")
				require.Error(t, err, "%s then %s", first, second)
				assert.True(t, utils.HasCode(err, utils.CodeDuplicateEmail))
				assert.Equal(t, "Email already in use", err.Error())

				_, err = env.store.FindByEmail(ctx, second, "e@x.com", false)
				assert.ErrorIs(t, err, accounts.ErrNotFound, "nothing may be written")
			}
		}
	})

	t.Run("TestDuplicateSameRole", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, models.RoleStudent, "a@x.com", "P1")

		acc := models.NewAccount(models.RoleStudent)
		acc.Base().Email = "a@x.com"
		_, err := env.svc.Register(ctx, models.RoleStudent, acc, "P1")
		assert.True(t, utils.HasCode(err, utils.CodeDuplicateEmail))
	})

	t.Run("TestMissingCredentials", func(t *testing.T) {
		env := newTestEnv(t)

		acc := models.NewAccount(models.RoleStudent)
		acc.Base().Email = "a@x.com"
		_, err := env.svc.Register(ctx, models.RoleStudent, acc, "")
		assert.True(t, utils.HasCode(err, utils.CodeValidation))

		_, err = env.svc.Register(ctx, models.RoleStudent, models.NewAccount(models.RoleStudent), "P1")
		assert.True(t, utils.HasCode(err, utils.CodeValidation))
	})

	t.Run("TestAdminDefaultAccessLevel", func(t *testing.T) {
		env := newTestEnv(t)
		created := env.register(t, models.RoleAdmin, "root@x.com", "P1")
		assert.Equal(t, models.DefaultAccessLevel, created.(*models.Admin).AccessLevel)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("TestSuccessfulLogin", func(t *testing.T) {
		env := newTestEnv(t)
		created := env.register(t, models.RolePlacementOfficer, "t@x.com", "P1")

		res, err := env.svc.Login(ctx, models.RolePlacementOfficer, "T@x.com", "P1")
		require.NoError(t, err)
		assert.Equal(t, models.RolePlacementOfficer, res.Role)
		assert.Empty(t, res.Account.Base().Password)

		claims, err := env.jwt.ParseJWT(res.Token)
		require.NoError(t, err)
		assert.Equal(t, created.Base().ID.Hex(), claims.ID)
		assert.Equal(t, "tpo", claims.Role)
	})

	t.Run("TestLoginInvalidCredentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, models.RoleStudent, "a@x.com", "P1")

		_, wrongPassword := env.svc.Login(ctx, models.RoleStudent, "a@x.com", "nope")
		_, unknownEmail := env.svc.Login(ctx, models.RoleStudent, "b@x.com", "P1")
		_, wrongRole := env.svc.Login(ctx, models.RoleFaculty, "a@x.com", "P1")

		for _, err := range []error{wrongPassword, unknownEmail, wrongRole} {
			assert.True(t, utils.HasCode(err, utils.CodeAuthFailure))
			assert.Equal(t, "Invalid credentials", err.Error())
		}
	})

	t.Run("TestLoginMissingFields", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Login(ctx, models.RoleStudent, "", "")
		assert.True(t, utils.HasCode(err, utils.CodeValidation))
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("TestSingleUse", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, models.RoleStudent, "a@x.com", "P1")

		res, err := env.svc.ForgotPassword(ctx, models.RoleStudent, "a@x.com")
		require.NoError(t, err)
		require.Len(t, res.Token, 40)

		acc, err := env.store.FindByEmail(ctx, models.RoleStudent, "a@x.com", false)
		require.NoError(t, err)
		assert.Equal(t, HashResetToken(res.Token), acc.Base().ResetPasswordToken)
		assert.NotEqual(t, res.Token, acc.Base().ResetPasswordToken)

		require.NoError(t, env.svc.ResetPassword(ctx, models.RoleStudent, res.Token, "P2"))
		assert.True(t, env.svc.hasher.Verify("P2", env.storedPassword(t, models.RoleStudent, "a@x.com")))

		err = env.svc.ResetPassword(ctx, models.RoleStudent, res.Token, "P3")
		assert.True(t, utils.HasCode(err, utils.CodeAuthFailure))
		assert.True(t, env.svc.hasher.Verify("P2", env.storedPassword(t, models.RoleStudent, "a@x.com")))
	})

	t.Run("TestConsumedBetweenLookupAndWrite", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, models.RoleStudent, "a@x.com", "P1")

		res, err := env.svc.ForgotPassword(ctx, models.RoleStudent, "a@x.com")
		require.NoError(t, err)

		racing := &consumingStore{Store: env.store}
		racing.onLookup = func(acc models.Account) {
			require.NoError(t, env.svc.ResetPassword(ctx, models.RoleStudent, res.Token, "P2"))
		}
		env.svc.store = racing

		err = env.svc.ResetPassword(ctx, models.RoleStudent, res.Token, "P3")
		assert.True(t, utils.HasCode(err, utils.CodeAuthFailure))
		assert.True(t, env.svc.hasher.Verify("P2", env.storedPassword(t, models.RoleStudent, "a@x.com")))
	})

	t.Run("TestExpired", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, models.RoleStudent, "a@x.com", "P1")

		issued := time.Now()
		env.svc.now = func() time.Time { return issued }
		res, err := env.svc.ForgotPassword(ctx, models.RoleStudent, "a@x.com")
		require.NoError(t, err)

		env.svc.now = func() time.Time { return issued.Add(15*time.Minute + time.Second) }
		err = env.svc.ResetPassword(ctx, models.RoleStudent, res.Token, "P2")
		assert.True(t, utils.HasCode(err, utils.CodeAuthFailure))
		assert.True(t, env.svc.hasher.Verify("P1", env.storedPassword(t, models.RoleStudent, "a@x.com")))
	})

	t.Run("TestReissueInvalidatesPrevious", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, models.RoleFaculty, "f@x.com", "P1")

		first, err := env.svc.ForgotPassword(ctx, models.RoleFaculty, "f@x.com")
		require.NoError(t, err)
		second, err := env.svc.ForgotPassword(ctx, models.RoleFaculty, "f@x.com")
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)

		err = env.svc.ResetPassword(ctx, models.RoleFaculty, first.Token, "P2")
		assert.True(t, utils.HasCode(err, utils.CodeAuthFailure))
		assert.NoError(t, env.svc.ResetPassword(ctx, models.RoleFaculty, second.Token, "P2"))
	})

	t.Run("TestTokenBoundToRole", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, models.RoleStudent, "a@x.com", "P1")

		res, err := env.svc.ForgotPassword(ctx, models.RoleStudent, "a@x.com")
		require.NoError(t, err)

		err = env.svc.ResetPassword(ctx, models.RoleAdmin, res.Token, "P2")
		assert.True(t, utils.HasCode(err, utils.CodeAuthFailure))
	})

	t.Run("TestUnknownEmailLooksTheSame", func(t *testing.T) {
		env := newTestEnv(t)
		res, err := env.svc.ForgotPassword(ctx, models.RoleStudent, "ghost@x.com")
		require.NoError(t, err)
		assert.Empty(t, res.Token)
		assert.False(t, res.Dispatched)
	})

	t.Run("TestMissingPassword", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.svc.ResetPassword(ctx, models.RoleStudent, "token", "")
		assert.True(t, utils.HasCode(err, utils.CodeValidation))
	})

	t.Run("TestMailDispatch", func(t *testing.T) {
		mailer := new(mockMailer)
		env := newTestEnv(t, withMailer(mailer))
		env.register(t, models.RoleStudent, "a@x.com", "P1")

		var sentURL string
		mailer.On("SendResetMail", mock.MatchedBy(func(p mail.ResetMailPayload) bool {
			return p.To == "a@x.com" && p.Role == models.RoleStudent && p.ExpiresInMinutes == 15
		})).Run(func(args mock.Arguments) {
			sentURL = args.Get(0).(mail.ResetMailPayload).ResetURL
		}).Return(nil).Once()

		res, err := env.svc.ForgotPassword(ctx, models.RoleStudent, "a@x.com")
		require.NoError(t, err)
		assert.Empty(t, res.Token, "token must not be returned when mailed")
		assert.True(t, res.Dispatched)
		mailer.AssertExpectations(t)

		require.True(t, strings.HasPrefix(sentURL, "http://app.test/reset-password/"))
		token := strings.TrimPrefix(sentURL, "http://app.test/reset-password/")
		assert.NoError(t, env.svc.ResetPassword(ctx, models.RoleStudent, token, "P2"))
	})

	t.Run("TestMailFailureIsNotEscalated", func(t *testing.T) {
		mailer := new(mockMailer)
		env := newTestEnv(t, withMailer(mailer))
		env.register(t, models.RoleStudent, "a@x.com", "P1")
		mailer.On("SendResetMail", mock.Anything).Return(errors.New("smtp down"))

		res, err := env.svc.ForgotPassword(ctx, models.RoleStudent, "a@x.com")
		require.NoError(t, err)
		assert.Empty(t, res.Token)
		assert.False(t, res.Dispatched)
	})
}

func TestList(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, models.RoleStudent, "a@x.com", "P1")
	env.register(t, models.RoleStudent, "b@x.com", "P1")

	list, err := env.svc.List(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, acc := range list {
		assert.Empty(t, acc.Base().Password)
		assert.NotEmpty(t, acc.Base().Email)
	}
}
