package webhook

import (
	"github.com/tidwall/gjson"
)

// Payload paths read during normalization
const (
	pathRef            = "ref"
	pathPusherName     = "pusher.name"
	pathAction         = "action"
	pathRepository     = "repository.full_name"
	pathPRUser         = "pull_request.user.login"
	pathPRHeadRef      = "pull_request.head.ref"
	pathPRBaseRef      = "pull_request.base.ref"
	pathPRMerged       = "pull_request.merged"
	pathPRMergedByUser = "pull_request.merged_by.login"
)

// Payload is a parsed webhook body. Lookups never fail: a missing key, or a
// value of the wrong JSON type, yields the caller's default.
type Payload struct {
	root gjson.Result
}

// ParsePayload validates body and returns it as a Payload. It returns
// ErrInvalidJSON for malformed JSON and ErrNotObject for any JSON value that
// is not an object.
func ParsePayload(body []byte) (Payload, error) {
	if !gjson.ValidBytes(body) {
		return Payload{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Payload{}, ErrNotObject
	}
	return Payload{root: root}, nil
}

// String returns the string at path, or def.
func (p Payload) String(path, def string) string {
	v := p.root.Get(path)
	if v.Type != gjson.String {
		return def
	}
	return v.Str
}

// IsTrue reports whether path holds the JSON boolean true.
func (p Payload) IsTrue(path string) bool {
	return p.root.Get(path).Type == gjson.True
}
