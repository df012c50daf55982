package glob

import "testing"

func TestBasicWildcards(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"abc", "abc", true},
		{"*", "abc", true},
		{"*", "", true},
		{"**", "", true},
		{"*c", "abc", true},
		{"*b", "abc", false},
		{"a*", "abc", true},
		{"b*", "abc", false},
		{"a*", "a", true},
		{"*a", "a", true},
		{"a*b*c*d*e*", "axbxcxdxe", true},
		{"a*b*c*d*e*", "axbxcxdxexxx", true},
		{"a*b?c*x", "abxbbxdbxebxczzx", true},
		{"a*b?c*x", "abxbbxdbxebxczzy", false},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.path); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestBasicPaths(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"a/*/test", "a/foo/test", true},
		{"a/*/test", "a/foo/bar/test", false},
		{"a/**/test", "a/foo/test", true},
		{"a/**/test", "a/foo/bar/test", true},
		{"a/**/b/c", "a/foo/bar/b/c", true},
		{`a\*b`, "a*b", true},
		{`a\*b`, "axb", false},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.path); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestCharClasses(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"[abc]", "a", true},
		{"[abc]", "b", true},
		{"[abc]", "c", true},
		{"[abc]", "d", false},
		{"x[abc]x", "xax", true},
		{"x[abc]x", "xdx", false},
		{"x[abc]x", "xay", false},
		{"[?]", "?", true},
		{"[?]", "a", false},
		{"[*]", "*", true},
		{"[a-cx]", "a", true},
		{"[a-cx]", "b", true},
		{"[a-cx]", "d", false},
		{"[a-cx]", "x", true},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.path); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestNegatedClasses(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"[^abc]", "a", false},
		{"[^abc]", "d", true},
		{"[!abc]", "a", false},
		{"[!abc]", "d", true},
		{`[\!]`, "!", true},
		{"a*b*[cy]*d*e*", "axbxcxdxexxx", true},
		{"a*b*[cy]*d*e*", "axbxyxdxexxx", true},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.path); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestBraces(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"test.{jpg,png}", "test.jpg", true},
		{"test.{jpg,png}", "test.png", true},
		{"test.{j*g,p*g}", "test.jpg", true},
		{"test.{j*g,p*g}", "test.jpxxxg", true},
		{"test.{j*g,p*g}", "test.jnt", false},
		{"test.{j*g,j*c}", "test.jnc", true},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.path); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestNegationInvolution(t *testing.T) {
	patterns := []string{"*.json", "a/**/b", "{x,y}.toml", "[a-z]*"}
	paths := []string{"a.json", "a/b/c/b", "x.toml", "hello"}
	for _, p := range patterns {
		for _, x := range paths {
			got := Match("!!"+p, x)
			want := Match(p, x)
			if got != want {
				t.Errorf("Match(!!%q, %q) = %v, want %v", p, x, got, want)
			}
		}
	}
}

func TestMatchWithCapturesAgreesWithMatch(t *testing.T) {
	cases := []struct{ pattern, path string }{
		{"*.json", "config.json"},
		{"a/*/test", "a/foo/test"},
		{"test.{jpg,png}", "test.png"},
		{"[abc]x", "bx"},
		{"nope", "nope!"},
	}
	for _, c := range cases {
		_, ok := MatchWithCaptures(c.pattern, c.path)
		want := Match(c.pattern, c.path)
		if ok != want {
			t.Errorf("MatchWithCaptures(%q, %q) ok=%v, Match=%v", c.pattern, c.path, ok, want)
		}
	}
}

func TestBraceCaptureSingleAlternative(t *testing.T) {
	ranges, ok := MatchWithCaptures("test.{jpg,png}", "test.png")
	if !ok {
		t.Fatalf("expected match")
	}
	if len(ranges) == 0 {
		t.Fatalf("expected at least one capture")
	}
	last := ranges[len(ranges)-1]
	got := "test.png"[last.Start:last.End]
	if got != "png" {
		t.Errorf("expected brace capture %q, got %q", "png", got)
	}
}
