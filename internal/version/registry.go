package version

import (
	"fmt"
	"regexp"

	"github.com/alevsk/podsec-advisor/internal/schema"
)

// Profile describes one supported Kubernetes minor version
type Profile struct {
	Version         string            `json:"version" yaml:"version"`
	Major           int               `json:"major" yaml:"major"`
	Minor           int               `json:"minor" yaml:"minor"`
	IsLTS           bool              `json:"isLts" yaml:"isLts"`
	DocsURL         string            `json:"docsUrl" yaml:"docsUrl"`
	SecurityDocsURL string            `json:"securityDocsUrl" yaml:"securityDocsUrl"`
	PolicyType      schema.PolicyType `json:"policyType" yaml:"policyType"`
}

const (
	docsURL    = "https://kubernetes.io/docs/"
	pspDocsURL = "https://kubernetes.io/docs/concepts/security/pod-security-policy/"
	pssDocsURL = "https://kubernetes.io/docs/concepts/security/pod-security-standards/"
)

// profiles is the static version table. Order matters: ClosestSupported
// breaks distance ties by first-encountered order.
var profiles = []Profile{
	{Version: "1.20", Major: 1, Minor: 20, IsLTS: false, DocsURL: docsURL, SecurityDocsURL: pspDocsURL, PolicyType: schema.PolicyTypePSP},
	{Version: "1.21", Major: 1, Minor: 21, IsLTS: true, DocsURL: docsURL, SecurityDocsURL: pspDocsURL, PolicyType: schema.PolicyTypePSP},
	{Version: "1.22", Major: 1, Minor: 22, IsLTS: false, DocsURL: docsURL, SecurityDocsURL: pssDocsURL, PolicyType: schema.PolicyTypePSSAlpha},
	{Version: "1.23", Major: 1, Minor: 23, IsLTS: false, DocsURL: docsURL, SecurityDocsURL: pssDocsURL, PolicyType: schema.PolicyTypePSSAlpha},
	{Version: "1.24", Major: 1, Minor: 24, IsLTS: true, DocsURL: docsURL, SecurityDocsURL: pssDocsURL, PolicyType: schema.PolicyTypePSSStable},
	{Version: "1.25", Major: 1, Minor: 25, IsLTS: false, DocsURL: docsURL, SecurityDocsURL: pssDocsURL, PolicyType: schema.PolicyTypePSSStable},
	{Version: "1.26", Major: 1, Minor: 26, IsLTS: false, DocsURL: docsURL, SecurityDocsURL: pssDocsURL, PolicyType: schema.PolicyTypePSSStable},
	{Version: "1.27", Major: 1, Minor: 27, IsLTS: true, DocsURL: docsURL, SecurityDocsURL: pssDocsURL, PolicyType: schema.PolicyTypePSSStable},
	{Version: "1.28", Major: 1, Minor: 28, IsLTS: false, DocsURL: docsURL, SecurityDocsURL: pssDocsURL, PolicyType: schema.PolicyTypePSSStable},
	{Version: "1.29", Major: 1, Minor: 29, IsLTS: false, DocsURL: docsURL, SecurityDocsURL: pssDocsURL, PolicyType: schema.PolicyTypePSSStable},
}

// Registry holds the static table of supported Kubernetes versions.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	ordered []Profile
	byName  map[string]Profile
}

// NewRegistry creates a registry from the static version table
func NewRegistry() *Registry {
	r := &Registry{
		ordered: profiles,
		byName:  make(map[string]Profile, len(profiles)),
	}
	for _, p := range profiles {
		r.byName[p.Version] = p
	}
	return r
}

// Get returns the profile for a version, or false if it is not supported
func (r *Registry) Get(version string) (Profile, bool) {
	p, ok := r.byName[version]
	return p, ok
}

// Supported returns the list of supported versions in table order
func (r *Registry) Supported() []string {
	out := make([]string, len(r.ordered))
	for i, p := range r.ordered {
		out[i] = p.Version
	}
	return out
}

// LTS returns the supported versions flagged as long-term support
func (r *Registry) LTS() []string {
	var out []string
	for _, p := range r.ordered {
		if p.IsLTS {
			out = append(out, p.Version)
		}
	}
	return out
}

// IsSupported reports whether a version is in the registry
func (r *Registry) IsSupported(version string) bool {
	_, ok := r.byName[version]
	return ok
}

// PolicyTypeFor returns the policy regime for a version. Unknown versions
// fall back to PSS Stable so callers never block on an unrecognized version.
func (r *Registry) PolicyTypeFor(version string) schema.PolicyType {
	if p, ok := r.byName[version]; ok {
		return p.PolicyType
	}
	return schema.PolicyTypePSSStable
}

// ClosestSupported returns the registered version minimizing the Manhattan
// distance |dMajor| + |dMinor|, ties broken by table order. Returns an error
// if the input cannot be parsed.
func (r *Registry) ClosestSupported(version string) (string, error) {
	parsed, err := Parse(version)
	if err != nil {
		return "", err
	}

	closest := ""
	minDistance := -1
	for _, p := range r.ordered {
		distance := abs(p.Major-parsed.Major) + abs(p.Minor-parsed.Minor)
		if minDistance < 0 || distance < minDistance {
			minDistance = distance
			closest = p.Version
		}
	}
	return closest, nil
}

// URLs returns the documentation URLs relevant to a version, keyed by topic
func (r *Registry) URLs(version string) map[string]string {
	p, ok := r.byName[version]
	if !ok {
		return nil
	}

	return map[string]string{
		"docs":                   p.DocsURL,
		"security":               p.SecurityDocsURL,
		"pod_security_standards": p.SecurityDocsURL,
		"security_context":       p.DocsURL + "tasks/configure-pod-container/security-context/",
		"pod_security_policies":  p.DocsURL + "concepts/security/pod-security-policy/",
		"rbac":                   p.DocsURL + "concepts/security/controlling-access/",
		"network_policies":       p.DocsURL + "concepts/services-networking/network-policies/",
		"secrets":                p.DocsURL + "concepts/configuration/secret/",
		"service_accounts":       p.DocsURL + "concepts/security/service-accounts/",
	}
}

// Parsed holds the numeric components of a version string
type Parsed struct {
	Major int
	Minor int
	Patch int
}

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?$`)

// Parse parses a "major.minor" or "major.minor.patch" version string
func Parse(version string) (Parsed, error) {
	m := versionPattern.FindStringSubmatch(version)
	if m == nil {
		return Parsed{}, fmt.Errorf("invalid version string: %q", version)
	}

	var p Parsed
	// The pattern guarantees these are numeric
	fmt.Sscanf(m[1], "%d", &p.Major)
	fmt.Sscanf(m[2], "%d", &p.Minor)
	if m[3] != "" {
		fmt.Sscanf(m[3], "%d", &p.Patch)
	}
	return p, nil
}

// Compare compares two version strings numerically, returning -1, 0 or 1.
// Missing components default to zero, so "1.9" sorts before "1.10".
// Unparseable strings compare as 0.0.0.
func Compare(a, b string) int {
	pa, _ := Parse(a)
	pb, _ := Parse(b)

	for _, d := range [3]int{pa.Major - pb.Major, pa.Minor - pb.Minor, pa.Patch - pb.Patch} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
