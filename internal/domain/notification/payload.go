package notification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Payload is the JSON body carried by a push message. Every field is optional.
type Payload struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Icon  string `json:"icon,omitempty"`
	URL   string `json:"url,omitempty"`
	JobID any    `json:"jobId,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// DecodePayload parses a push body and fills absent fields with the literal
// defaults. Fields are decoded one by one, so a field with the wrong type
// falls back to its default without discarding the others. A decode error is
// returned alongside the payload, never instead of it.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if len(data) == 0 {
		return p.withDefaults(), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return p.withDefaults(), fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var errs []error
	for name, dst := range map[string]*string{
		"title": &p.Title,
		"body":  &p.Body,
		"icon":  &p.Icon,
		"url":   &p.URL,
		"tag":   &p.Tag,
	} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", name, err))
		}
	}

	if raw, ok := fields["jobId"]; ok {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&p.JobID); err != nil {
			errs = append(errs, fmt.Errorf("jobId: %v", err))
		}
	}

	if len(errs) > 0 {
		return p.withDefaults(), fmt.Errorf("%w: %v", ErrInvalidPayload, errors.Join(errs...))
	}
	return p.withDefaults(), nil
}

func (p Payload) withDefaults() Payload {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Body == "" {
		p.Body = DefaultBody
	}
	if p.Icon == "" {
		p.Icon = DefaultIcon
	}
	if p.URL == "" {
		p.URL = DefaultURL
	}
	if p.Tag == "" {
		p.Tag = DefaultTag
	}
	return p
}

// Options builds the presentation options for the payload. When tagPerJob is
// set and the sender left the tag at its default, the tag is derived from the
// job id so separate jobs stack instead of replacing each other.
func (p Payload) Options(tagPerJob bool) Options {
	tag := p.Tag
	if tagPerJob && tag == DefaultTag && p.JobID != nil {
		tag = DefaultTag + "-" + jobKey(p.JobID)
	}
	return Options{
		Body:               p.Body,
		Icon:               p.Icon,
		Badge:              DefaultBadge,
		Data:               Data{URL: p.URL, JobID: p.JobID},
		Actions:            DefaultActions(),
		Tag:                tag,
		RequireInteraction: true,
		Vibrate:            DefaultVibrate(),
	}
}

// jobKey renders a job id for use in a tag. Numbers keep their literal form.
func jobKey(id any) string {
	switch v := id.(type) {
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
