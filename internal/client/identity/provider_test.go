package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/evento/internal/client/models"
	"github.com/dmitrijs2005/evento/internal/logging"
)

type fakeBackend struct {
	listener     func(*models.User)
	unsubscribed int

	User   *models.User
	Err    error
	OnCall func()

	LastEmail    string
	LastPassword string
	ReloadCalls  int
	SignOutCalls int
}

func (f *fakeBackend) call(email, password string) (*models.User, error) {
	f.LastEmail, f.LastPassword = email, password
	if f.OnCall != nil {
		f.OnCall()
	}
	if f.Err != nil {
		return nil, f.Err
	}
	f.push(f.User)
	return f.User, nil
}

func (f *fakeBackend) push(u *models.User) {
	if f.listener != nil {
		f.listener(u)
	}
}

func (f *fakeBackend) CreateAccount(_ context.Context, email, password string) (*models.User, error) {
	return f.call(email, password)
}

func (f *fakeBackend) Authenticate(_ context.Context, email, password string) (*models.User, error) {
	return f.call(email, password)
}

func (f *fakeBackend) FederatedAuthenticate(context.Context) (*models.User, error) {
	return f.call("", "")
}

func (f *fakeBackend) TerminateSession(context.Context) error {
	f.SignOutCalls++
	if f.Err != nil {
		return f.Err
	}
	f.push(nil)
	return nil
}

func (f *fakeBackend) Reload(context.Context) (*models.User, error) {
	f.ReloadCalls++
	if f.OnCall != nil {
		f.OnCall()
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.User, nil
}

func (f *fakeBackend) OnSessionStateChange(fn func(*models.User)) func() {
	f.listener = fn
	return func() {
		f.unsubscribed++
		f.listener = nil
	}
}

func TestProvider_UnknownUntilFirstNotification(t *testing.T) {
	fb := &fakeBackend{}
	p := NewProvider(fb, logging.Nop())
	defer p.Close()

	u, loaded := p.Current()
	assert.Nil(t, u)
	assert.False(t, loaded)

	fb.push(nil)
	u, loaded = p.Current()
	assert.Nil(t, u)
	assert.True(t, loaded)

	fb.push(&models.User{UID: "u1", Email: "a@x.com"})
	u, loaded = p.Current()
	require.True(t, loaded)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.UID)
}

func TestProvider_CloseUnsubscribesOnce(t *testing.T) {
	fb := &fakeBackend{}
	p := NewProvider(fb, logging.Nop())

	p.Close()
	p.Close()

	assert.Equal(t, 1, fb.unsubscribed)
	assert.Nil(t, fb.listener)
}

func TestProvider_SignIn_BusyDuringCallAndCleared(t *testing.T) {
	fb := &fakeBackend{User: &models.User{UID: "u1", Email: "a@x.com"}}
	p := NewProvider(fb, logging.Nop())
	defer p.Close()

	var busyInside bool
	fb.OnCall = func() { busyInside = p.Busy() }

	u, err := p.SignIn(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UID)
	assert.True(t, busyInside)
	assert.False(t, p.Busy())
	assert.Equal(t, "a@x.com", fb.LastEmail)
	assert.Equal(t, "secret123", fb.LastPassword)

	cur, loaded := p.Current()
	require.True(t, loaded)
	assert.Equal(t, "u1", cur.UID)
}

func TestProvider_ErrorsPropagateUnchangedAndClearBusy(t *testing.T) {
	backendErr := &Error{Status: 400, Code: CodeEmailExists}
	fb := &fakeBackend{Err: backendErr}
	p := NewProvider(fb, logging.Nop())
	defer p.Close()
	ctx := context.Background()

	_, err := p.Register(ctx, "a@x.com", "secret123")
	assert.Same(t, backendErr, err)
	assert.False(t, p.Busy())

	_, err = p.SignIn(ctx, "a@x.com", "secret123")
	assert.Same(t, backendErr, err)
	assert.False(t, p.Busy())

	_, err = p.SignInWithProvider(ctx)
	assert.Same(t, backendErr, err)
	assert.False(t, p.Busy())

	err = p.SignOut(ctx)
	assert.Same(t, backendErr, err)
	assert.False(t, p.Busy())
}

func TestProvider_SignOutClearsCurrentUser(t *testing.T) {
	fb := &fakeBackend{User: &models.User{UID: "u1"}}
	p := NewProvider(fb, logging.Nop())
	defer p.Close()
	ctx := context.Background()

	_, err := p.SignIn(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx))

	u, loaded := p.Current()
	assert.True(t, loaded)
	assert.Nil(t, u)
	assert.Equal(t, 1, fb.SignOutCalls)
}

func TestProvider_ReloadNoopWithoutUser(t *testing.T) {
	fb := &fakeBackend{User: &models.User{UID: "u1"}}
	p := NewProvider(fb, logging.Nop())
	defer p.Close()

	require.NoError(t, p.ReloadCurrentUser(context.Background()))
	assert.Equal(t, 0, fb.ReloadCalls)
}

func TestProvider_ReloadUpdatesAndNotifies(t *testing.T) {
	fb := &fakeBackend{}
	p := NewProvider(fb, logging.Nop())
	defer p.Close()

	fb.push(&models.User{UID: "u1", DisplayName: "Old"})

	var seen []*models.User
	cancel := p.Watch(func(u *models.User) { seen = append(seen, u) })

	fb.User = &models.User{UID: "u1", DisplayName: "New"}
	require.NoError(t, p.ReloadCurrentUser(context.Background()))

	cur, _ := p.Current()
	assert.Equal(t, "New", cur.DisplayName)
	require.Len(t, seen, 1)
	assert.Equal(t, "New", seen[0].DisplayName)

	cancel()
	fb.push(nil)
	assert.Len(t, seen, 1)
}

func TestProvider_ReloadError(t *testing.T) {
	fb := &fakeBackend{}
	p := NewProvider(fb, logging.Nop())
	defer p.Close()
	fb.push(&models.User{UID: "u1"})

	fb.Err = errors.New("offline")
	err := p.ReloadCurrentUser(context.Background())
	require.EqualError(t, err, "offline")
	assert.False(t, p.Busy())

	cur, _ := p.Current()
	assert.Equal(t, "u1", cur.UID)
}

func TestProvider_CurrentReturnsCopy(t *testing.T) {
	fb := &fakeBackend{}
	p := NewProvider(fb, logging.Nop())
	defer p.Close()
	fb.push(&models.User{UID: "u1"})

	u, _ := p.Current()
	u.UID = "mutated"

	again, _ := p.Current()
	assert.Equal(t, "u1", again.UID)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "identity: EMAIL_EXISTS", (&Error{Code: CodeEmailExists}).Error())
	assert.Equal(t, "identity: WEAK_PASSWORD: too short",
		(&Error{Code: CodeWeakPassword, Message: "too short"}).Error())
	assert.True(t, HasCode(errors.Join(errors.New("x"), &Error{Code: CodeUserDisabled}), CodeUserDisabled))
	assert.False(t, HasCode(errors.New("x"), CodeUserDisabled))
}
