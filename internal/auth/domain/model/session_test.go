package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRequest_Command(t *testing.T) {
	testCases := []struct {
		name    string
		req     SessionRequest
		want    SessionCommand
		wantErr error
	}{
		{
			name: "login with role",
			req:  SessionRequest{UserID: "u1", Username: "alexpierce", Role: RoleAdmin},
			want: LoginRequest{Identity: Identity{UserID: "u1", Username: "alexpierce", Role: RoleAdmin}},
		},
		{
			name: "login defaults to customer",
			req:  SessionRequest{UserID: "u1", Username: "alexpierce"},
			want: LoginRequest{Identity: Identity{UserID: "u1", Username: "alexpierce", Role: RoleCustomer}},
		},
		{
			name: "logout ignores identity fields",
			req:  SessionRequest{Action: ActionLogout, UserID: "u1"},
			want: LogoutRequest{},
		},
		{
			name:    "empty body",
			req:     SessionRequest{},
			wantErr: ErrMissingIdentity,
		},
		{
			name:    "blank username",
			req:     SessionRequest{UserID: "u1", Username: "   "},
			wantErr: ErrMissingIdentity,
		},
		{
			name:    "unknown action is a login without identity",
			req:     SessionRequest{Action: "refresh"},
			wantErr: ErrMissingIdentity,
		},
		{
			name:    "unknown role",
			req:     SessionRequest{UserID: "u1", Username: "alexpierce", Role: "ROOT"},
			wantErr: ErrInvalidRole,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := tc.req.Command()
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, cmd)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cmd)
		})
	}
}
