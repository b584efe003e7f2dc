package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/schema"
	"github.com/alevsk/podsec-advisor/internal/version"
)

func newTestAnalyzer() *Analyzer {
	return New(catalog.New(), version.NewRegistry())
}

func TestAnalyzeField(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name       string
		field      string
		value      any
		wantStatus schema.VerdictStatus
	}{
		{"runAsNonRoot true", "runAsNonRoot", true, schema.StatusSecure},
		{"runAsNonRoot false", "runAsNonRoot", false, schema.StatusWarning},
		{"runAsNonRoot non-bool", "runAsNonRoot", "yes", schema.StatusError},

		{"allowPrivilegeEscalation false", "allowPrivilegeEscalation", false, schema.StatusSecure},
		{"allowPrivilegeEscalation true", "allowPrivilegeEscalation", true, schema.StatusWarning},
		{"allowPrivilegeEscalation missing type", "allowPrivilegeEscalation", nil, schema.StatusError},

		{"privileged true", "privileged", true, schema.StatusCritical},
		{"privileged false", "privileged", false, schema.StatusSecure},
		{"privileged non-bool", "privileged", 1, schema.StatusWarning},

		{"readOnlyRootFilesystem true", "readOnlyRootFilesystem", true, schema.StatusSecure},
		{"readOnlyRootFilesystem false", "readOnlyRootFilesystem", false, schema.StatusWarning},
		{"readOnlyRootFilesystem nil", "readOnlyRootFilesystem", nil, schema.StatusError},

		{"runAsUser zero", "runAsUser", 0, schema.StatusCritical},
		{"runAsUser nonzero", "runAsUser", 1000, schema.StatusSecure},
		{"runAsUser int64", "runAsUser", int64(1000), schema.StatusSecure},
		{"runAsUser negative", "runAsUser", -1, schema.StatusWarning},
		{"runAsUser string", "runAsUser", "root", schema.StatusWarning},

		{"hostPID true", "hostPID", true, schema.StatusCritical},
		{"hostPID false", "hostPID", false, schema.StatusSecure},
		{"hostIPC true", "hostIPC", true, schema.StatusCritical},
		{"hostNetwork unset type", "hostNetwork", "true", schema.StatusWarning},

		{"seccomp runtime default", "seccompProfile", map[string]any{"type": "RuntimeDefault"}, schema.StatusSecure},
		{"seccomp unconfined", "seccompProfile", map[string]any{"type": "Unconfined"}, schema.StatusWarning},
		{"seccomp missing", "seccompProfile", map[string]any{}, schema.StatusWarning},
		{"apparmor runtime default string", "apparmorProfile", "RuntimeDefault", schema.StatusSecure},

		{"unknown field", "fooBar", true, schema.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeField(tt.field, tt.value, "1.29")
			if got.Status != tt.wantStatus {
				t.Errorf("AnalyzeField(%q, %v) status = %q, want %q (message: %s)",
					tt.field, tt.value, got.Status, tt.wantStatus, got.Message)
			}
			if got.FieldName != tt.field {
				t.Errorf("AnalyzeField(%q) FieldName = %q", tt.field, got.FieldName)
			}
		})
	}
}

func TestAnalyzeFieldCapabilities(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name        string
		value       any
		wantStatus  schema.VerdictStatus
		wantMessage string
	}{
		{
			"drop all",
			map[string]any{"drop": []any{"ALL"}},
			schema.StatusSecure,
			"All capabilities dropped, no additional capabilities added",
		},
		{
			"drop all with add",
			map[string]any{"drop": []any{"ALL"}, "add": []any{"NET_BIND_SERVICE"}},
			schema.StatusSecure,
			"only specific capabilities added",
		},
		{
			"partial drop",
			map[string]any{"drop": []any{"NET_RAW"}},
			schema.StatusWarning,
			"Not all capabilities are dropped",
		},
		{
			"empty",
			map[string]any{},
			schema.StatusWarning,
			"Capabilities not explicitly configured",
		},
		{
			"wrong type",
			"ALL",
			schema.StatusWarning,
			"Capabilities not explicitly configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeField("capabilities", tt.value, "1.29")
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if !strings.Contains(got.Message, tt.wantMessage) {
				t.Errorf("message = %q, want substring %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestAnalyzeFieldDeprecated(t *testing.T) {
	cat := catalog.From([]catalog.FieldSpec{
		{
			FieldName:      "fsGroupChangePolicy",
			FieldPath:      "spec.securityContext.fsGroupChangePolicy",
			Description:    "Controls ownership change behavior for mounted volumes",
			DeprecatedIn:   "1.26",
			SecurityImpact: "low",
			SourceDocument: "https://kubernetes.io/docs/tasks/configure-pod-container/security-context/",
		},
	})
	a := New(cat, version.NewRegistry())

	tests := []struct {
		name       string
		k8sVersion string
		wantStatus schema.VerdictStatus
	}{
		{"before deprecation", "1.25", schema.StatusInfo},
		{"at deprecation", "1.26", schema.StatusDeprecated},
		{"after deprecation", "1.27", schema.StatusDeprecated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeField("fsGroupChangePolicy", "OnRootMismatch", tt.k8sVersion)
			if got.Status != tt.wantStatus {
				t.Errorf("AnalyzeField at %s status = %q, want %q", tt.k8sVersion, got.Status, tt.wantStatus)
			}
		})
	}

	// Deprecated fields count as warnings in the aggregate
	manifest := "spec:\n  securityContext:\n    fsGroupChangePolicy: OnRootMismatch\n"
	analysis := a.Analyze(manifest, "1.27")
	if len(analysis.Warnings) != 1 {
		t.Errorf("Warnings = %v, want the deprecated field", analysis.Warnings)
	}
	if analysis.PolicyCompliance[schema.PolicyLevelRestricted] {
		t.Error("Restricted compliance = true with a deprecated field")
	}
}

const secureManifest = `apiVersion: v1
kind: Pod
metadata:
  name: secure-pod
spec:
  hostPID: false
  hostIPC: false
  hostNetwork: false
  securityContext:
    runAsNonRoot: true
    runAsUser: 1000
    seccompProfile:
      type: RuntimeDefault
  containers:
    - name: app
      image: nginx:1.25
      securityContext:
        allowPrivilegeEscalation: false
        readOnlyRootFilesystem: true
        privileged: false
        capabilities:
          drop:
            - ALL
`

const insecureManifest = `apiVersion: v1
kind: Pod
metadata:
  name: risky-pod
spec:
  hostPID: true
  containers:
    - name: app
      image: nginx:1.25
      securityContext:
        privileged: true
        runAsUser: 0
        allowPrivilegeEscalation: true
`

func TestAnalyzeSecureManifest(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze(secureManifest, "1.29")
	if analysis.OverallScore != 100 {
		t.Errorf("OverallScore = %.1f, want 100", analysis.OverallScore)
	}
	if !analysis.PolicyCompliance[schema.PolicyLevelBaseline] {
		t.Error("Baseline compliance = false, want true")
	}
	if !analysis.PolicyCompliance[schema.PolicyLevelRestricted] {
		t.Error("Restricted compliance = false, want true")
	}
	if len(analysis.CriticalIssues) != 0 {
		t.Errorf("CriticalIssues = %v, want none", analysis.CriticalIssues)
	}
	if len(analysis.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", analysis.Warnings)
	}
}

func TestAnalyzeInsecureManifest(t *testing.T) {
	a := newTestAnalyzer()

	analysis := a.Analyze(insecureManifest, "1.29")
	if analysis.OverallScore != 0 {
		t.Errorf("OverallScore = %.1f, want 0", analysis.OverallScore)
	}
	if analysis.PolicyCompliance[schema.PolicyLevelBaseline] {
		t.Error("Baseline compliance = true, want false")
	}
	if analysis.PolicyCompliance[schema.PolicyLevelRestricted] {
		t.Error("Restricted compliance = true, want false")
	}

	// privileged, runAsUser 0 and hostPID are all critical
	if len(analysis.CriticalIssues) != 3 {
		t.Errorf("CriticalIssues = %v, want 3 entries", analysis.CriticalIssues)
	}
	if len(analysis.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1 entry", analysis.Warnings)
	}
}

func TestAnalyzeTerminalCases(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name      string
		yaml      string
		wantIssue string
	}{
		{"invalid yaml", "{{not yaml", "Invalid YAML format"},
		{"empty document", "", "Invalid YAML format"},
		{"missing spec", "apiVersion: v1\nkind: Pod\nmetadata:\n  name: x\n", "Missing spec section"},
		{"spec wrong type", "spec: 42\n", "Missing spec section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := a.Analyze(tt.yaml, "1.29")
			if analysis.OverallScore != 0 {
				t.Errorf("OverallScore = %.1f, want 0", analysis.OverallScore)
			}
			if len(analysis.Results) != 0 {
				t.Errorf("Results = %v, want none", analysis.Results)
			}
			if len(analysis.CriticalIssues) != 1 || analysis.CriticalIssues[0] != tt.wantIssue {
				t.Errorf("CriticalIssues = %v, want [%q]", analysis.CriticalIssues, tt.wantIssue)
			}
			if analysis.PolicyCompliance[schema.PolicyLevelBaseline] {
				t.Error("Baseline compliance = true, want false")
			}
		})
	}
}

func TestAnalyzeDeterminism(t *testing.T) {
	a := newTestAnalyzer()

	first := a.Analyze(insecureManifest, "1.24")
	for i := 0; i < 10; i++ {
		if got := a.Analyze(insecureManifest, "1.24"); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differs from first run:\nfirst: %+v\ngot:   %+v", i, first, got)
		}
	}
}

func TestRecommendationDedup(t *testing.T) {
	a := newTestAnalyzer()

	// Two containers with the same issue produce one recommendation
	manifest := `spec:
  containers:
    - name: a
      securityContext:
        allowPrivilegeEscalation: true
    - name: b
      securityContext:
        allowPrivilegeEscalation: true
`
	analysis := a.Analyze(manifest, "1.29")
	if len(analysis.Results) != 2 {
		t.Fatalf("Results = %d, want 2", len(analysis.Results))
	}
	if len(analysis.Recommendations) != 1 {
		t.Errorf("Recommendations = %v, want a single deduplicated entry", analysis.Recommendations)
	}
}

func TestScoreFraction(t *testing.T) {
	a := newTestAnalyzer()

	// One secure of two evaluated fields
	manifest := `spec:
  containers:
    - name: a
      securityContext:
        privileged: false
        allowPrivilegeEscalation: true
`
	analysis := a.Analyze(manifest, "1.29")
	if analysis.OverallScore != 50 {
		t.Errorf("OverallScore = %.1f, want 50", analysis.OverallScore)
	}
}
