package analyzer

import (
	"fmt"

	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/schema"
)

// ruleFunc evaluates one observed field value against its catalog spec.
// Rules are pure functions: same input, same verdict.
type ruleFunc func(fieldName string, value any, spec catalog.FieldSpec) schema.FieldVerdict

// rules is the static dispatch table keyed by field name. Every field in the
// catalog must have an entry here; fields without one fall through to
// ruleGeneric.
var rules = map[string]ruleFunc{
	"runAsNonRoot":             ruleRunAsNonRoot,
	"allowPrivilegeEscalation": ruleAllowPrivilegeEscalation,
	"privileged":               rulePrivileged,
	"readOnlyRootFilesystem":   ruleReadOnlyRootFilesystem,
	"runAsUser":                ruleRunAsUser,
	"capabilities":             ruleCapabilities,
	"hostPID":                  ruleHostNamespace,
	"hostIPC":                  ruleHostNamespace,
	"hostNetwork":              ruleHostNamespace,
	"seccompProfile":           ruleSecurityProfile,
	"apparmorProfile":          ruleSecurityProfile,
}

func verdict(name string, value any, status schema.VerdictStatus, message, recommendation string, spec catalog.FieldSpec) schema.FieldVerdict {
	return schema.FieldVerdict{
		FieldName:      name,
		Value:          value,
		Status:         status,
		Message:        message,
		Recommendation: recommendation,
		PolicyLevel:    spec.PolicyLevel,
		SecurityImpact: spec.SecurityImpact,
	}
}

// asBool extracts a YAML boolean
func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asInt extracts a YAML integer across the numeric types yaml.v3 produces
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		// Whole-number floats only; 1000.5 is not a valid UID
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func ruleRunAsNonRoot(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	b, ok := asBool(value)
	switch {
	case ok && b:
		return verdict(name, value, schema.StatusSecure,
			"Container is configured to run as non-root",
			"Good security practice", spec)
	case ok && !b:
		return verdict(name, value, schema.StatusWarning,
			"Container can run as root user",
			"Set to true for better security", spec)
	default:
		return verdict(name, value, schema.StatusError,
			"runAsNonRoot should be explicitly set to true or false",
			"Set runAsNonRoot: true for security", spec)
	}
}

func ruleAllowPrivilegeEscalation(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	b, ok := asBool(value)
	switch {
	case ok && !b:
		return verdict(name, value, schema.StatusSecure,
			"Privilege escalation is disabled",
			"Good security practice", spec)
	case ok && b:
		return verdict(name, value, schema.StatusWarning,
			"Privilege escalation is allowed",
			"Set to false for better security", spec)
	default:
		return verdict(name, value, schema.StatusError,
			"allowPrivilegeEscalation should be explicitly set",
			"Set allowPrivilegeEscalation: false", spec)
	}
}

func rulePrivileged(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	b, ok := asBool(value)
	switch {
	case ok && b:
		return verdict(name, value, schema.StatusCritical,
			"Container runs in privileged mode - EXTREMELY DANGEROUS",
			"Remove privileged: true immediately", spec)
	case ok && !b:
		return verdict(name, value, schema.StatusSecure,
			"Container is not privileged",
			"Good security practice", spec)
	default:
		return verdict(name, value, schema.StatusWarning,
			"Privileged mode not explicitly disabled",
			"Set privileged: false explicitly", spec)
	}
}

func ruleReadOnlyRootFilesystem(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	b, ok := asBool(value)
	switch {
	case ok && b:
		return verdict(name, value, schema.StatusSecure,
			"Root filesystem is read-only",
			"Good security practice", spec)
	case ok && !b:
		return verdict(name, value, schema.StatusWarning,
			"Root filesystem is writable",
			"Set to true for better security", spec)
	default:
		return verdict(name, value, schema.StatusError,
			"readOnlyRootFilesystem should be explicitly set",
			"Set readOnlyRootFilesystem: true", spec)
	}
}

func ruleRunAsUser(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	uid, ok := asInt(value)
	switch {
	case ok && uid == 0:
		return verdict(name, value, schema.StatusCritical,
			"Container runs as root user (UID 0)",
			"Use a non-zero UID", spec)
	case ok && uid > 0:
		return verdict(name, value, schema.StatusSecure,
			fmt.Sprintf("Container runs as non-root user (UID %d)", uid),
			"Good security practice", spec)
	default:
		return verdict(name, value, schema.StatusWarning,
			"runAsUser should be explicitly set to a non-zero value",
			"Set runAsUser to a non-zero value (e.g., 1000)", spec)
	}
}

func ruleCapabilities(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	caps, ok := value.(map[string]any)
	if !ok || len(caps) == 0 {
		return verdict(name, value, schema.StatusWarning,
			"Capabilities not explicitly configured",
			"Drop ALL capabilities and add only required ones", spec)
	}

	dropAll := false
	if drop, ok := caps["drop"].([]any); ok {
		for _, c := range drop {
			if s, ok := c.(string); ok && s == "ALL" {
				dropAll = true
				break
			}
		}
	}

	var added []string
	if add, ok := caps["add"].([]any); ok {
		for _, c := range add {
			if s, ok := c.(string); ok {
				added = append(added, s)
			}
		}
	}

	switch {
	case dropAll && len(added) == 0:
		return verdict(name, value, schema.StatusSecure,
			"All capabilities dropped, no additional capabilities added",
			"Good security practice", spec)
	case dropAll:
		return verdict(name, value, schema.StatusSecure,
			fmt.Sprintf("All capabilities dropped, only specific capabilities added: %v", added),
			"Good security practice - review if all added capabilities are necessary", spec)
	default:
		return verdict(name, value, schema.StatusWarning,
			"Not all capabilities are dropped",
			"Drop ALL capabilities and add only required ones", spec)
	}
}

func ruleHostNamespace(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	b, ok := asBool(value)
	switch {
	case ok && b:
		return verdict(name, value, schema.StatusCritical,
			fmt.Sprintf("%s is enabled - DANGEROUS", name),
			fmt.Sprintf("Remove %s: true", name), spec)
	case ok && !b:
		return verdict(name, value, schema.StatusSecure,
			fmt.Sprintf("%s is disabled", name),
			"Good security practice", spec)
	default:
		return verdict(name, value, schema.StatusWarning,
			fmt.Sprintf("%s should be explicitly set to false", name),
			fmt.Sprintf("Set %s: false", name), spec)
	}
}

func ruleSecurityProfile(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	var profileType string
	switch v := value.(type) {
	case map[string]any:
		if t, ok := v["type"].(string); ok {
			profileType = t
		}
	case string:
		profileType = v
	}

	switch profileType {
	case "RuntimeDefault":
		return verdict(name, value, schema.StatusSecure,
			fmt.Sprintf("%s is set to RuntimeDefault", name),
			"Good security practice", spec)
	case "Unconfined":
		return verdict(name, value, schema.StatusWarning,
			fmt.Sprintf("%s is set to Unconfined", name),
			fmt.Sprintf("Set %s to RuntimeDefault", name), spec)
	default:
		return verdict(name, value, schema.StatusWarning,
			fmt.Sprintf("%s should be set to RuntimeDefault", name),
			fmt.Sprintf("Set %s to RuntimeDefault", name), spec)
	}
}

// ruleGeneric handles catalog fields without a dedicated rule
func ruleGeneric(name string, value any, spec catalog.FieldSpec) schema.FieldVerdict {
	return verdict(name, value, schema.StatusInfo,
		fmt.Sprintf("Field %s is set to %v", name, value),
		"Review if this configuration is appropriate", spec)
}
