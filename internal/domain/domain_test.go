package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeURLs_DefaultsFirst(t *testing.T) {
	tests := []struct {
		name     string
		defaults []string
		extras   []string
		want     []string
	}{
		{"both", []string{"a", "b"}, []string{"c", "d"}, []string{"a", "b", "c", "d"}},
		{"defaults only", []string{"a"}, nil, []string{"a"}},
		{"extras only", nil, []string{"x", "y"}, []string{"x", "y"}},
		{"none", nil, nil, []string{}},
		{"duplicates kept", []string{"a"}, []string{"a"}, []string{"a", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeURLs(tt.defaults, tt.extras)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("MergeURLs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeURLs_DoesNotAliasDefaults(t *testing.T) {
	defaults := make([]string, 1, 4)
	defaults[0] = "a"
	merged := MergeURLs(defaults, []string{"b"})
	merged[0] = "changed"
	if defaults[0] != "a" {
		t.Fatal("merge must not write through to the profile defaults")
	}
}

func TestThreadAppend_IsAppendOnly(t *testing.T) {
	th := Thread{Name: "AcmeStore"}
	th1 := th.Append(Message{Role: RoleUser, Content: "hi"})
	th2 := th1.Append(Message{Role: RoleAssistant, Content: "hello"})

	if len(th.Messages) != 0 {
		t.Fatalf("original thread mutated: %v", th.Messages)
	}
	if len(th1.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(th1.Messages))
	}
	want := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	if diff := cmp.Diff(want, th2.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if th2.Name != "AcmeStore" {
		t.Fatalf("name lost: %q", th2.Name)
	}
}

func TestProfileNormalize_EmptyListsNotNull(t *testing.T) {
	data, err := json.Marshal(Profile{Name: "Ana"}.Normalize())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"Ana","agency":"","role":"","signature":"","defaultSalesProofUrls":[],"defaultPortfolioUrls":[]}`
	if string(data) != want {
		t.Fatalf("got %s", data)
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrInvalidInput, "scoutingMessage and storeOwnerReply are required"},
		{fmt.Errorf("reply: %w", ErrUpstreamEmpty), "No reply generated"},
		{fmt.Errorf("reply: %w: openai: 401 invalid key", ErrUpstreamError), "Failed to generate reply"},
		{fmt.Errorf("post: %w", ErrNetwork), "Network or server error."},
		{&RemoteError{StatusCode: 500, Message: "Failed to generate reply"}, "Failed to generate reply"},
		{&RemoteError{StatusCode: 502}, "Something went wrong."},
		{errors.New("boom"), "Something went wrong."},
	}
	for _, tt := range tests {
		if got := PublicMessage(tt.err); got != tt.want {
			t.Errorf("PublicMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestThreadsNames_Sorted(t *testing.T) {
	ts := Threads{"b": {Name: "b"}, "AcmeStore": {Name: "AcmeStore"}, "a": {Name: "a"}}
	want := []string{"AcmeStore", "a", "b"}
	if diff := cmp.Diff(want, ts.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if got := (Threads{}).Names(); len(got) != 0 {
		t.Fatalf("empty threads: %v", got)
	}
}
