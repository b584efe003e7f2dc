package version

import "github.com/alevsk/podsec-advisor/internal/schema"

// CompatibilityInfo summarizes what a Kubernetes version supports
type CompatibilityInfo struct {
	Version             string            `json:"version" yaml:"version"`
	PolicyType          schema.PolicyType `json:"policyType" yaml:"policyType"`
	SupportedFields     map[string]bool   `json:"supportedFields" yaml:"supportedFields"`
	UnsupportedFields   []string          `json:"unsupportedFields" yaml:"unsupportedFields"`
	Description         string            `json:"description" yaml:"description"`
	RestrictedAvailable bool              `json:"restrictedAvailable" yaml:"restrictedAvailable"`
	RecommendedUpgrade  string            `json:"recommendedUpgrade" yaml:"recommendedUpgrade"`
}

// fieldOrder keeps SupportedFields output and UnsupportedFields deterministic
var fieldOrder = []string{
	"runAsNonRoot",
	"allowPrivilegeEscalation",
	"readOnlyRootFilesystem",
	"privileged",
	"hostPID",
	"hostIPC",
	"hostNetwork",
	"runAsUser",
	"runAsGroup",
	"fsGroup",
	"supplementalGroups",
	"seccompProfile",
	"apparmorProfile",
}

// unsupportedByPolicyType lists fields a regime cannot enforce; everything
// else in fieldOrder is supported.
var unsupportedByPolicyType = map[schema.PolicyType]map[string]bool{
	schema.PolicyTypePSP: {
		"runAsNonRoot":             true,
		"allowPrivilegeEscalation": true,
		"readOnlyRootFilesystem":   true,
		"seccompProfile":           true,
		"apparmorProfile":          true,
	},
	schema.PolicyTypePSSAlpha: {
		"seccompProfile":  true,
		"apparmorProfile": true,
	},
	schema.PolicyTypePSSStable: {},
}

// SupportedFields returns the per-field support matrix for a version
func (r *Registry) SupportedFields(version string) map[string]bool {
	unsupported := unsupportedByPolicyType[r.PolicyTypeFor(version)]

	out := make(map[string]bool, len(fieldOrder))
	for _, f := range fieldOrder {
		out[f] = !unsupported[f]
	}
	return out
}

// Compatibility returns comprehensive compatibility information for a version
func (r *Registry) Compatibility(version string) CompatibilityInfo {
	policyType := r.PolicyTypeFor(version)
	supported := r.SupportedFields(version)

	var unsupported []string
	for _, f := range fieldOrder {
		if !supported[f] {
			unsupported = append(unsupported, f)
		}
	}

	info := CompatibilityInfo{
		Version:           version,
		PolicyType:        policyType,
		SupportedFields:   supported,
		UnsupportedFields: unsupported,
	}

	switch policyType {
	case schema.PolicyTypePSP:
		info.Description = "PodSecurityPolicy (PSP) - legacy security model"
		info.RestrictedAvailable = false
		info.RecommendedUpgrade = "Upgrade to 1.24+ for Pod Security Standards"
	case schema.PolicyTypePSSAlpha:
		info.Description = "Pod Security Standards (PSS) - alpha stage"
		info.RestrictedAvailable = true
		info.RecommendedUpgrade = "Consider upgrading to 1.24+ for stable PSS"
	default:
		info.Description = "Pod Security Standards (PSS) - stable"
		info.RestrictedAvailable = true
		info.RecommendedUpgrade = "Current version - no migration needed"
	}

	return info
}

// Note returns a short advisory about the policy regime of a version, shown
// alongside analysis results. Empty for unknown regimes.
func (r *Registry) Note(version string) string {
	switch r.PolicyTypeFor(version) {
	case schema.PolicyTypePSP:
		return "This version (1.20-1.21) enforces the legacy PodSecurityPolicy model. " +
			"Some newer fields and policies are not supported; upgrading to 1.24+ is recommended."
	case schema.PolicyTypePSSAlpha:
		return "This version (1.22-1.23) runs Pod Security Standards in alpha. " +
			"Some fields and policies have limited support; 1.24+ is recommended for production."
	case schema.PolicyTypePSSStable:
		return "This version (1.24+) enforces stable Pod Security Standards with full field support."
	}
	return ""
}
