package scopelib

import (
	"reflect"
	"testing"
)

func TestNormalizeScope(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"https://www.googleapis.com/auth/drive", "drive"},
		{"  https://www.googleapis.com/auth/Gmail.Readonly ", "gmail.readonly"},
		{"https://mail.google.com/", "mail.google.com"},
		{"Mail.Read", "mail.read"},
		{"https://graph.microsoft.com/Mail.Read", "mail.read"},
		{" https://graph.microsoft.com/Files.ReadWrite.All ", "files.readwrite.all"},
		{"channels:history", "channels:history"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeScope(tc.input); got != tc.want {
			t.Fatalf("NormalizeScope(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeScopes(t *testing.T) {
	t.Parallel()

	got := NormalizeScopes([]string{"openid", "https://www.googleapis.com/auth/drive", "", "DRIVE", "openid"})
	want := []string{"openid", "drive"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeScopes() = %v, want %v", got, want)
	}
	if got := NormalizeScopes(nil); got != nil {
		t.Fatalf("NormalizeScopes(nil) = %v, want nil", got)
	}
}
