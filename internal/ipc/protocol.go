// Package ipc provides the single-owner unix-socket control channel for a
// running listener session.
package ipc

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK       bool   `json:"ok"`
	State    string `json:"state,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Lines    int    `json:"lines,omitempty"`
	Commands int    `json:"commands,omitempty"`
}
