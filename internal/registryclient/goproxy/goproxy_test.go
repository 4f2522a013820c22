package goproxy

import "testing"

func TestEncodeForProxyEscapesCapitals(t *testing.T) {
	got := encodeForProxy("github.com/BurntSushi/toml")
	want := "github.com/!burnt!sushi/toml"
	if got != want {
		t.Errorf("encodeForProxy() = %q, want %q", got, want)
	}
}

func TestEncodeForProxyLowercaseUnchanged(t *testing.T) {
	if got := encodeForProxy("golang.org/x/sync"); got != "golang.org/x/sync" {
		t.Errorf("encodeForProxy() = %q", got)
	}
}

func TestSortBySemverAscending(t *testing.T) {
	versions := []string{"v2.0.0", "v1.0.0", "v1.5.0"}
	sortBySemver(versions)
	want := []string{"v1.0.0", "v1.5.0", "v2.0.0"}
	for i := range want {
		if versions[i] != want[i] {
			t.Errorf("sortBySemver() = %v, want %v", versions, want)
			break
		}
	}
}

func TestSortBySemverUnparsableFallsBackToLexical(t *testing.T) {
	versions := []string{"branch-b", "branch-a"}
	sortBySemver(versions)
	if versions[0] != "branch-a" || versions[1] != "branch-b" {
		t.Errorf("sortBySemver() = %v, want lexical fallback order", versions)
	}
}

func TestKind(t *testing.T) {
	c := New(nil)
	if c.Kind() != "go_proxy" {
		t.Errorf("Kind() = %q", c.Kind())
	}
}
