// Package classify maps CRAN request paths to artifact descriptors.
package classify

import "regexp"

// Artifact describes the CRAN artifact a request path refers to.
// It is derived from the path alone and carries no identity beyond
// its values.
type Artifact struct {
	Type    string `json:"artifact_type"`
	Package string `json:"package,omitempty"`
	Version string `json:"version,omitempty"`
	RMinor  string `json:"r_minor,omitempty"`
	OS      string `json:"os,omitempty"`
}

// Artifact type values.
const (
	TypeSrcTar     = "src_tar"
	TypeArchiveTar = "archive_tar"
	TypeWinZip     = "win_zip"
	TypeMacTgz     = "mac_tgz"
	TypeIndexRDS   = "index_rds"
	TypeIndexGz    = "index_gz"
	TypeIndexText  = "index_text"
	TypeUnknown    = "unknown"
)

var (
	srcTarPattern     = regexp.MustCompile(`^/src/contrib/([A-Za-z0-9.]+)_([^/]+)\.tar\.gz$`)
	archiveTarPattern = regexp.MustCompile(`^/src/contrib/Archive/([^/]+)/[^/]+_([^/]+)\.tar\.gz$`)
	winZipPattern     = regexp.MustCompile(`^/bin/windows/contrib/(\d+\.\d+)/([^_]+)_([^/]+)\.zip$`)
	macTgzPattern     = regexp.MustCompile(`^/bin/macosx/.*/contrib/(\d+\.\d+)/([^_]+)_([^/]+)\.tgz$`)
	indexRDSPattern   = regexp.MustCompile(`^/(src/contrib|bin/.*/contrib/\d+\.\d+)/PACKAGES\.rds$`)
	indexGzPattern    = regexp.MustCompile(`^/(src/contrib|bin/.*/contrib/\d+\.\d+)/PACKAGES\.gz$`)
	indexTextPattern  = regexp.MustCompile(`^/(src/contrib|bin/.*/contrib/\d+\.\d+)/PACKAGES$`)
)

// rules are evaluated in order; the first match wins. Precedence is part
// of the contract, so this stays an explicit ordered list rather than a
// dispatch table.
var rules = []struct {
	pattern *regexp.Regexp
	build   func(m []string) Artifact
}{
	{srcTarPattern, func(m []string) Artifact {
		return Artifact{Type: TypeSrcTar, Package: m[1], Version: m[2]}
	}},
	{archiveTarPattern, func(m []string) Artifact {
		return Artifact{Type: TypeArchiveTar, Package: m[1], Version: m[2]}
	}},
	{winZipPattern, func(m []string) Artifact {
		return Artifact{Type: TypeWinZip, RMinor: m[1], Package: m[2], Version: m[3], OS: "windows"}
	}},
	{macTgzPattern, func(m []string) Artifact {
		return Artifact{Type: TypeMacTgz, RMinor: m[1], Package: m[2], Version: m[3], OS: "macos"}
	}},
	{indexRDSPattern, func([]string) Artifact { return Artifact{Type: TypeIndexRDS} }},
	{indexGzPattern, func([]string) Artifact { return Artifact{Type: TypeIndexGz} }},
	{indexTextPattern, func([]string) Artifact { return Artifact{Type: TypeIndexText} }},
}

// Path classifies a raw request path. The path is matched exactly as
// received: no percent-decoding, no normalization. Paths that match no
// rule classify as unknown — this is a best-effort observability signal,
// never a validator, so every input string classifies to something.
func Path(path string) Artifact {
	for _, r := range rules {
		if m := r.pattern.FindStringSubmatch(path); m != nil {
			return r.build(m)
		}
	}
	return Artifact{Type: TypeUnknown}
}

// Types lists every artifact type value, for bounded metric labels.
func Types() []string {
	return []string{
		TypeSrcTar, TypeArchiveTar, TypeWinZip, TypeMacTgz,
		TypeIndexRDS, TypeIndexGz, TypeIndexText, TypeUnknown,
	}
}
