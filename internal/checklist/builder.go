package checklist

import "fmt"

// Checklist categories
const (
	CategoryPodSecurity = "pod_security"
	CategoryRBAC        = "rbac"
	CategoryNetwork     = "network"
	CategorySecrets     = "secrets"
	CategoryGeneral     = "general"
)

// Categories lists the known checklist categories
func Categories() []string {
	return []string{
		CategoryPodSecurity,
		CategoryRBAC,
		CategoryNetwork,
		CategorySecrets,
		CategoryGeneral,
	}
}

// Build creates a remediation checklist for a problem from the category's
// template. Unknown categories fall back to the general template.
func Build(problem, category, severity string) *ProblemTree {
	template, ok := templates[category]
	if !ok {
		category = CategoryGeneral
		template = templates[CategoryGeneral]
	}

	root := &CheckItem{
		Title:       fmt.Sprintf("Remediate: %s", problem),
		Description: fmt.Sprintf("Work through these checks to address the reported problem (%s).", category),
		Category:    category,
		Severity:    severity,
		Children:    cloneItems(template),
	}
	setCategorySeverity(root.Children, category, severity)
	return NewProblemTree(problem, category, severity, root)
}

func cloneItems(items []*CheckItem) []*CheckItem {
	out := make([]*CheckItem, len(items))
	for i, item := range items {
		clone := *item
		clone.Children = cloneItems(item.Children)
		out[i] = &clone
	}
	return out
}

func setCategorySeverity(items []*CheckItem, category, severity string) {
	for _, item := range items {
		if item.Category == "" {
			item.Category = category
		}
		if item.Severity == "" {
			item.Severity = severity
		}
		setCategorySeverity(item.Children, category, severity)
	}
}

var templates = map[string][]*CheckItem{
	CategoryPodSecurity: {
		{
			Title:       "Review the pod and container security contexts",
			Description: "Inspect spec.securityContext and every containers[].securityContext for missing or insecure settings.",
			Children: []*CheckItem{
				{Title: "Set runAsNonRoot: true and a non-zero runAsUser"},
				{Title: "Set allowPrivilegeEscalation: false"},
				{Title: "Remove privileged: true from all containers", Severity: SeverityCritical},
				{Title: "Set readOnlyRootFilesystem: true"},
				{Title: "Drop ALL capabilities and add back only required ones"},
			},
		},
		{
			Title:       "Disable host namespace sharing",
			Description: "hostPID, hostIPC and hostNetwork give pods visibility into the node.",
			Severity:    SeverityCritical,
			Children: []*CheckItem{
				{Title: "Set hostPID: false"},
				{Title: "Set hostIPC: false"},
				{Title: "Set hostNetwork: false"},
			},
		},
		{
			Title: "Apply runtime security profiles",
			Children: []*CheckItem{
				{Title: "Set seccompProfile.type to RuntimeDefault"},
				{Title: "Apply an AppArmor profile where the runtime supports it"},
			},
		},
		{Title: "Enforce the target profile with the Pod Security admission controller"},
	},
	CategoryRBAC: {
		{
			Title: "Audit the roles bound to the workload's service account",
			Children: []*CheckItem{
				{Title: "List RoleBindings and ClusterRoleBindings for the service account"},
				{Title: "Remove wildcard verbs and resources from bound roles", Severity: SeverityHigh},
				{Title: "Replace cluster-wide bindings with namespaced ones where possible"},
			},
		},
		{Title: "Use a dedicated service account instead of default"},
		{Title: "Set automountServiceAccountToken: false if the API is not needed"},
	},
	CategoryNetwork: {
		{
			Title: "Restrict pod network exposure",
			Children: []*CheckItem{
				{Title: "Apply a default-deny ingress NetworkPolicy to the namespace"},
				{Title: "Allow only required ingress flows by pod selector"},
				{Title: "Add egress rules blocking the node metadata service"},
			},
		},
		{Title: "Set hostNetwork: false so the pod cannot use node interfaces", Severity: SeverityCritical},
	},
	CategorySecrets: {
		{
			Title: "Review how the workload consumes secrets",
			Children: []*CheckItem{
				{Title: "Mount secrets as files instead of environment variables"},
				{Title: "Scope secret access with RBAC to the consuming service account"},
				{Title: "Enable encryption at rest for Secret resources", Severity: SeverityHigh},
			},
		},
		{Title: "Rotate any secret that may have been exposed", Severity: SeverityCritical},
	},
	CategoryGeneral: {
		{
			Title: "Establish the security baseline",
			Children: []*CheckItem{
				{Title: "Run the pod manifest through the security analyzer"},
				{Title: "Fix critical issues before warnings"},
				{Title: "Document accepted risks that cannot be remediated"},
			},
		},
		{Title: "Enable the Pod Security admission controller in warn mode"},
		{Title: "Re-run the analysis and record the score"},
	},
}
