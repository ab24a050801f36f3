package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_WellFormed(t *testing.T) {
	p, err := DecodePayload([]byte(`{"title":"Go Engineer","body":"Remote","icon":"/x.png","url":"https://jobs.example/1","jobId":42,"tag":"job-42"}`))
	require.NoError(t, err)

	assert.Equal(t, "Go Engineer", p.Title)
	assert.Equal(t, "Remote", p.Body)
	assert.Equal(t, "/x.png", p.Icon)
	assert.Equal(t, "https://jobs.example/1", p.URL)
	assert.Equal(t, "job-42", p.Tag)
	assert.Equal(t, json.Number("42"), p.JobID)
}

func TestDecodePayload_MixedTypesKeepUsableFields(t *testing.T) {
	p, err := DecodePayload([]byte(`{"title":"Go developer at Acme","body":"Remote","tag":"job-42","jobId":42,"url":7}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Contains(t, err.Error(), "url")

	assert.Equal(t, "Go developer at Acme", p.Title)
	assert.Equal(t, "Remote", p.Body)
	assert.Equal(t, "job-42", p.Tag)
	assert.Equal(t, json.Number("42"), p.JobID)
	assert.Equal(t, DefaultURL, p.URL)
	assert.Equal(t, DefaultIcon, p.Icon)
}

func TestDecodePayload_Defaults(t *testing.T) {
	cases := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"nil body", nil, false},
		{"empty object", []byte(`{}`), false},
		{"empty strings", []byte(`{"title":"","body":"","tag":""}`), false},
		{"malformed", []byte(`{"title":`), true},
		{"wrong type", []byte(`{"title":5}`), true},
		{"not json", []byte(`hello`), true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := DecodePayload(c.data)
			if c.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, DefaultTitle, p.Title)
			assert.Equal(t, DefaultBody, p.Body)
			assert.Equal(t, DefaultIcon, p.Icon)
			assert.Equal(t, DefaultURL, p.URL)
			assert.Equal(t, DefaultTag, p.Tag)
		})
	}
}

func TestPayloadOptions_Fixed(t *testing.T) {
	p, _ := DecodePayload([]byte(`{"url":"/dashboard"}`))
	opts := p.Options(false)

	assert.Equal(t, "/badge.png", opts.Badge)
	assert.True(t, opts.RequireInteraction)
	assert.Equal(t, []int{200, 100, 200}, opts.Vibrate)
	assert.Equal(t, []Action{{ActionView, "View Job"}, {ActionClose, "Close"}}, opts.Actions)
	assert.Equal(t, "/dashboard", opts.Data.URL)
	assert.Equal(t, DefaultTag, opts.Tag)
}

func TestPayloadOptions_TagPerJob(t *testing.T) {
	withJob, _ := DecodePayload([]byte(`{"jobId":7}`))
	assert.Equal(t, DefaultTag, withJob.Options(false).Tag)
	assert.Equal(t, "job-alert-7", withJob.Options(true).Tag)

	explicit, _ := DecodePayload([]byte(`{"jobId":7,"tag":"custom"}`))
	assert.Equal(t, "custom", explicit.Options(true).Tag)

	large, _ := DecodePayload([]byte(`{"jobId":1000000}`))
	assert.Equal(t, "job-alert-1000000", large.Options(true).Tag)

	named, _ := DecodePayload([]byte(`{"jobId":"abc"}`))
	assert.Equal(t, "job-alert-abc", named.Options(true).Tag)

	assert.Equal(t, "job-alert-1000000", Payload{Tag: DefaultTag, JobID: float64(1000000)}.Options(true).Tag)

	noJob, _ := DecodePayload(nil)
	assert.Equal(t, DefaultTag, noJob.Options(true).Tag)
}
