package handlers

import (
	"testing"

	"github.com/akinalp/wordless/ws"
)

func TestIsInvalidRequest(t *testing.T) {
	req := func(connID, auth, body string) ws.Request {
		r := ws.Request{ConnectionID: connID}
		r.Authorization = auth
		if body != "" {
			r.Body = []byte(body)
		}
		return r
	}

	tests := []struct {
		name     string
		req      ws.Request
		required []string
		want     bool
	}{
		{"valid", req("c1", "Bearer x", `{"emote_id":"e1"}`), []string{"emote_id"}, false},
		{"no required fields", req("c1", "Bearer x", ""), nil, false},
		{"missing connection", req("", "Bearer x", `{"emote_id":"e1"}`), []string{"emote_id"}, true},
		{"blank connection", req("  ", "Bearer x", `{"emote_id":"e1"}`), []string{"emote_id"}, true},
		{"missing authorization", req("c1", "", `{"emote_id":"e1"}`), []string{"emote_id"}, true},
		{"missing body", req("c1", "Bearer x", ""), []string{"emote_id"}, true},
		{"body not an object", req("c1", "Bearer x", `[1,2]`), []string{"emote_id"}, true},
		{"field absent", req("c1", "Bearer x", `{"other":"x"}`), []string{"emote_id"}, true},
		{"null field", req("c1", "Bearer x", `{"emote_id":null}`), []string{"emote_id"}, true},
		{"empty string", req("c1", "Bearer x", `{"emote_id":""}`), []string{"emote_id"}, true},
		{"zero number", req("c1", "Bearer x", `{"limit":0}`), []string{"limit"}, true},
		{"false", req("c1", "Bearer x", `{"flag":false}`), []string{"flag"}, true},
		{"empty array is present", req("c1", "Bearer x", `{"emojis":[]}`), []string{"emojis"}, false},
		{"empty object is present", req("c1", "Bearer x", `{"meta":{}}`), []string{"meta"}, false},
		{"array with nulls is present", req("c1", "Bearer x", `{"emojis":[null]}`), []string{"emojis"}, false},
		{"second field missing", req("c1", "Bearer x", `{"reaction_id":"r","emoji_id":":a:"}`),
			[]string{"reaction_id", "emoji_id", "operation"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isInvalidRequest(tt.req, tt.required...); got != tt.want {
				t.Errorf("isInvalidRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}
