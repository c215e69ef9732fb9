package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc.def", want: "abc.def"},
		{name: "lowercase scheme", header: "bearer tok", want: "tok"},
		{name: "missing", header: "", wantErr: ErrMissingToken},
		{name: "wrong scheme", header: "Basic dXNlcg==", wantErr: ErrInvalidToken},
		{name: "no token", header: "Bearer", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier()
	v.Add("tok-1", Subject{ID: "user-1", Email: "a@example.com"})

	s, err := v.Verify(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.ID)

	_, err = v.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}
