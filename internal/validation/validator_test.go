package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldTags(r Result) map[string]string {
	out := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		out[f.Field] = f.Tag
	}
	return out
}

func TestGet_Singleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}

func TestResetPasswordRequest(t *testing.T) {
	tests := []struct {
		name string
		req  ResetPasswordRequest
		want map[string]string
	}{
		{
			name: "valid",
			req:  ResetPasswordRequest{Email: "pejman@gmail.com", Password: "secret"},
			want: map[string]string{},
		},
		{
			name: "empty",
			req:  ResetPasswordRequest{},
			want: map[string]string{"email": "required", "password": "required"},
		},
		{
			name: "too short",
			req:  ResetPasswordRequest{Email: "a@b", Password: "1234"},
			want: map[string]string{"email": "min", "password": "min"},
		},
		{
			name: "not an email",
			req:  ResetPasswordRequest{Email: "not-an-email", Password: "12345"},
			want: map[string]string{"email": "email"},
		},
		{
			name: "too long",
			req: ResetPasswordRequest{
				Email:    strings.Repeat("a", 250) + "@x.com",
				Password: strings.Repeat("p", 1025),
			},
			want: map[string]string{"email": "max", "password": "max"},
		},
		{
			name: "upper bounds",
			req: ResetPasswordRequest{
				Email:    "pejman@gmail.com",
				Password: strings.Repeat("p", 1024),
			},
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.req.Validate()
			assert.Equal(t, len(tt.want) == 0, res.OK)
			assert.Equal(t, tt.want, fieldTags(res))
		})
	}
}

func TestArticleRequest(t *testing.T) {
	showID := int64(3)
	zero := int64(0)

	res := (&ArticleRequest{Title: "Review", Body: "Text", ShowID: &showID}).Validate()
	assert.True(t, res.OK)
	assert.NoError(t, res.Err())

	res = (&ArticleRequest{Title: "Review", Body: "Text"}).Validate()
	assert.True(t, res.OK)

	res = (&ArticleRequest{Title: strings.Repeat("t", 256), Body: "", ShowID: &zero}).Validate()
	require.False(t, res.OK)
	assert.Equal(t, map[string]string{"title": "max", "body": "required", "show_id": "min"}, fieldTags(res))
	assert.Error(t, res.Err())
}

func TestLoginRequest(t *testing.T) {
	assert.True(t, (&LoginRequest{Email: "a@b.co", Password: "x"}).Validate().OK)
	res := (&LoginRequest{Email: "nope"}).Validate()
	assert.Equal(t, map[string]string{"email": "email", "password": "required"}, fieldTags(res))
}

func TestResult_Messages(t *testing.T) {
	res := (&ResetPasswordRequest{Email: "a@b", Password: ""}).Validate()
	require.False(t, res.OK)

	msg := res.Error()
	assert.Contains(t, msg, "email: must be at least 5 characters")
	assert.Contains(t, msg, "password: must not be empty")
	assert.Empty(t, Result{OK: true}.Error())
}

func TestValidate_NonStruct(t *testing.T) {
	res := Validate("plain string")
	assert.False(t, res.OK)
	require.Len(t, res.Fields, 1)
	assert.Equal(t, "invalid", res.Fields[0].Tag)
}
