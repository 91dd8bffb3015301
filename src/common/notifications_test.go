package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailTransportFollowsEnvironment(t *testing.T) {
	cases := []struct {
		env  string
		want string
	}{
		{"local", "smtp"},
		{"test", "ses"},
		{"production", "ses"},
		{"", "smtp"},
	}
	for _, c := range cases {
		t.Setenv("API_ENV", c.env)
		assert.Equal(t, c.want, mailTransport(), "env %q", c.env)
	}
}
