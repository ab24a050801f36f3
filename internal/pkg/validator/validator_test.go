package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

type keys struct {
	Auth string `json:"auth" validate:"required"`
}

type sample struct {
	Email      string   `json:"email" validate:"required,email"`
	AlertSpeed string   `json:"alert_speed" validate:"omitempty,oneof=instant 30min hourly"`
	IDs        []int64  `json:"notification_ids" validate:"required,min=1"`
	Keys       keys     `json:"keys"`
	Tags       []string `json:"-"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{Email: "dev@example.com", AlertSpeed: "instant", IDs: []int64{1}, Keys: keys{Auth: "x"}})
	assert.NoError(t, err)
}

func TestStruct_FieldErrors(t *testing.T) {
	err := Struct(sample{Email: "nope", AlertSpeed: "weekly"})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)

	m := verrs.ToMap()
	assert.Equal(t, "must be a valid email address", m["email"])
	assert.Equal(t, "must be one of: instant 30min hourly", m["alert_speed"])
	assert.Equal(t, "is required", m["notification_ids"])
	assert.Equal(t, "is required", m["keys.auth"])
	assert.Contains(t, err.Error(), "email: must be a valid email address")
}

func TestStruct_NonStruct(t *testing.T) {
	err := Struct("not a struct")
	require.Error(t, err)
	_, ok := err.(ValidationErrors)
	assert.False(t, ok)
}
