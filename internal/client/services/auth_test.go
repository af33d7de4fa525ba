package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/bcards/internal/client/client"
	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, claims session.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "bare", body: "abc.def.ghi", want: "abc.def.ghi"},
		{name: "bare with newline", body: "abc.def.ghi\n", want: "abc.def.ghi"},
		{name: "quoted", body: `"abc.def.ghi"`, want: "abc.def.ghi"},
		{name: "object", body: `{"token":"abc.def.ghi"}`, want: "abc.def.ghi"},
		{name: "empty", body: "", wantErr: true},
		{name: "object without token", body: `{"user":"x"}`, wantErr: true},
		{name: "empty quoted", body: `""`, wantErr: true},
		{name: "broken object", body: `{"token":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken([]byte(tt.body))
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrNoToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tok := token(t, session.Claims{UserID: "u1", IsBusiness: true})
	fc := &fakeClient{loginBody: []byte(tok)}
	fs := &fakeSession{}

	user, err := NewAuthService(fc, fs, logging.Discard()).Login(context.Background(), models.Credentials{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, models.User{ID: "u1", IsBusiness: true}, user)
	assert.Equal(t, tok, fs.snap.Token)
	assert.True(t, fs.snap.LoggedIn)
	assert.Equal(t, []string{"login"}, fc.calls)
}

func TestAuthService_Login_ObjectBody(t *testing.T) {
	tok := token(t, session.Claims{UserID: "u2", IsAdmin: true})
	fs := &fakeSession{}

	user, err := NewAuthService(&fakeClient{loginBody: []byte(`{"token":"` + tok + `"}`)}, fs, logging.Discard()).
		Login(context.Background(), models.Credentials{})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestAuthService_Login_Failures(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeClient
		want error
	}{
		{name: "transport", fc: &fakeClient{err: client.ErrUnavailable}, want: client.ErrUnavailable},
		{name: "rejected", fc: &fakeClient{err: client.ErrUnauthorized}, want: client.ErrUnauthorized},
		{name: "no token", fc: &fakeClient{loginBody: []byte(`{}`)}, want: common.ErrNoToken},
		{name: "undecodable", fc: &fakeClient{loginBody: []byte("not-a-jwt")}, want: common.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSession{}
			_, err := NewAuthService(tt.fc, fs, logging.Discard()).Login(context.Background(), models.Credentials{})
			require.ErrorIs(t, err, tt.want)
			assert.False(t, fs.snap.LoggedIn)
		})
	}
}

func TestAuthService_Login_SessionError(t *testing.T) {
	boom := errors.New("disk full")
	fs := &fakeSession{loginErr: boom}
	fc := &fakeClient{loginBody: []byte(token(t, session.Claims{UserID: "u1"}))}

	_, err := NewAuthService(fc, fs, logging.Discard()).Login(context.Background(), models.Credentials{})
	require.ErrorIs(t, err, boom)
}

func TestAuthService_RegisterAndLogout(t *testing.T) {
	fc := &fakeClient{}
	fs := loggedIn(models.User{ID: "u1"})
	svc := NewAuthService(fc, fs, logging.Discard())

	require.NoError(t, svc.Register(context.Background(), models.Registration{Email: "a@b.co"}))
	assert.True(t, fs.snap.LoggedIn, "register leaves the session alone")

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, fs.snap.LoggedIn)

	fc.err = &client.ServerError{StatusCode: 400, Message: "User already registered"}
	err := svc.Register(context.Background(), models.Registration{})
	var se *client.ServerError
	require.ErrorAs(t, err, &se)
}
