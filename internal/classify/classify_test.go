package classify

import (
	"strings"
	"testing"
)

func TestPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Artifact
	}{
		{
			name: "source tarball",
			path: "/src/contrib/dplyr_1.1.4.tar.gz",
			want: Artifact{Type: TypeSrcTar, Package: "dplyr", Version: "1.1.4"},
		},
		{
			name: "source tarball with dotted package name",
			path: "/src/contrib/data.table_1.15.0.tar.gz",
			want: Artifact{Type: TypeSrcTar, Package: "data.table", Version: "1.15.0"},
		},
		{
			name: "archived tarball",
			path: "/src/contrib/Archive/dplyr/dplyr_1.0.0.tar.gz",
			want: Artifact{Type: TypeArchiveTar, Package: "dplyr", Version: "1.0.0"},
		},
		{
			name: "windows binary",
			path: "/bin/windows/contrib/4.3/xml2_1.3.6.zip",
			want: Artifact{Type: TypeWinZip, RMinor: "4.3", Package: "xml2", Version: "1.3.6", OS: "windows"},
		},
		{
			name: "macos binary",
			path: "/bin/macosx/big-sur-arm64/contrib/4.3/xml2_1.3.6.tgz",
			want: Artifact{Type: TypeMacTgz, RMinor: "4.3", Package: "xml2", Version: "1.3.6", OS: "macos"},
		},
		{
			name: "source index rds",
			path: "/src/contrib/PACKAGES.rds",
			want: Artifact{Type: TypeIndexRDS},
		},
		{
			name: "source index gz",
			path: "/src/contrib/PACKAGES.gz",
			want: Artifact{Type: TypeIndexGz},
		},
		{
			name: "source index plain",
			path: "/src/contrib/PACKAGES",
			want: Artifact{Type: TypeIndexText},
		},
		{
			name: "binary index gz",
			path: "/bin/windows/contrib/4.3/PACKAGES.gz",
			want: Artifact{Type: TypeIndexGz},
		},
		{
			name: "binary index plain",
			path: "/bin/macosx/big-sur-arm64/contrib/4.4/PACKAGES",
			want: Artifact{Type: TypeIndexText},
		},
		{
			name: "root",
			path: "/",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "empty path",
			path: "",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "unrelated path",
			path: "/web/packages/dplyr/index.html",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "not anchored at start",
			path: "/mirror/src/contrib/dplyr_1.1.4.tar.gz",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "trailing garbage rejected",
			path: "/src/contrib/dplyr_1.1.4.tar.gz.sig",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "windows binary with underscore in package falls through",
			path: "/bin/windows/contrib/4.3/my_pkg_1.0.zip",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "windows binary with non-numeric r version",
			path: "/bin/windows/contrib/devel/xml2_1.3.6.zip",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "non-ascii path",
			path: "/src/contrib/päckage_1.0.tar.gz",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "package name with invalid chars",
			path: "/src/contrib/dp-lyr_1.1.4.tar.gz",
			want: Artifact{Type: TypeUnknown},
		},
		{
			name: "pathologically long path",
			path: "/" + strings.Repeat("a/", 10000) + "x",
			want: Artifact{Type: TypeUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Path(tt.path)
			if got != tt.want {
				t.Errorf("Path(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

// The rule set is designed to be structurally disjoint: no path should
// match more than one pattern, so precedence never actually decides.
func TestRulesDisjoint(t *testing.T) {
	paths := []string{
		"/src/contrib/dplyr_1.1.4.tar.gz",
		"/src/contrib/Archive/dplyr/dplyr_1.0.0.tar.gz",
		"/bin/windows/contrib/4.3/xml2_1.3.6.zip",
		"/bin/macosx/big-sur-arm64/contrib/4.3/xml2_1.3.6.tgz",
		"/src/contrib/PACKAGES.rds",
		"/src/contrib/PACKAGES.gz",
		"/src/contrib/PACKAGES",
		"/bin/windows/contrib/4.3/PACKAGES.gz",
		"/web/packages/dplyr/index.html",
	}
	for _, p := range paths {
		matches := 0
		for _, r := range rules {
			if r.pattern.MatchString(p) {
				matches++
			}
		}
		if matches > 1 {
			t.Errorf("path %q matches %d rules, want at most 1", p, matches)
		}
	}
}

func TestPathUnknownHasNoCaptures(t *testing.T) {
	got := Path("/totally/unrelated")
	if got.Package != "" || got.Version != "" || got.RMinor != "" || got.OS != "" {
		t.Errorf("unknown classification carries captures: %+v", got)
	}
}
