package crawler

import "github.com/alevsk/podsec-advisor/internal/schema"

// StaticContent returns hand-authored documentation pages for versions that
// predate stable Pod Security Standards. The kubernetes.io archive no
// longer serves per-version docs for these releases.
func StaticContent(v string) []schema.ParsedPage {
	return []schema.ParsedPage{
		{
			Title: "Pod Security Policies",
			Content: "PodSecurityPolicy (PSP) is a cluster-level resource that controls " +
				"security-sensitive aspects of pod specification. PSPs define a set of " +
				"conditions that a pod must run with in order to be accepted into the " +
				"system. PodSecurityPolicy was deprecated in Kubernetes 1.21 and removed " +
				"in 1.25; clusters on this version should plan a migration to Pod " +
				"Security Standards.",
			Sections: []schema.PageSection{
				{
					Title: "What is a PodSecurityPolicy", Level: 2,
					Content: "A PodSecurityPolicy is an admission controller resource that " +
						"validates requests to create and update pods. It controls privileged " +
						"containers, host namespaces (hostPID, hostIPC, hostNetwork), volume " +
						"types, the user and group IDs of the container, and Linux " +
						"capabilities. Without an authorizing policy, pods that request " +
						"restricted features are rejected.",
				},
				{
					Title: "Privileged containers", Level: 2,
					Content: "The privileged flag determines if any container in a pod can " +
						"enable privileged mode. By default a container is not allowed to " +
						"access any devices on the host, but a privileged container is given " +
						"access to all devices on the host. A privileged container has nearly " +
						"the same access as processes running directly on the host.",
				},
				{
					Title: "Host namespaces", Level: 2,
					Content: "hostPID controls whether pod containers can share the host " +
						"process ID namespace, allowing processes in the container to see " +
						"all processes on the host. hostIPC controls sharing of the host IPC " +
						"namespace. hostNetwork gives the pod access to the node's network " +
						"interfaces and the loopback device. All three should be false for " +
						"workload pods.",
				},
				{
					Title: "Migration to Pod Security Standards", Level: 2,
					Content: "Pod Security Standards replace PodSecurityPolicy with three " +
						"profiles: Privileged, Baseline and Restricted. The built-in Pod " +
						"Security admission controller enforces these profiles per " +
						"namespace. Audit existing PSPs, map them to the closest profile and " +
						"enable the admission controller in warn mode before enforcing.",
				},
			},
			Metadata: map[string]string{"source": "static"},
			URL:      "static://pod-security-policies",
			Version:  v,
		},
		{
			Title: "Configure a Security Context for a Pod or Container",
			Content: "A security context defines privilege and access control settings " +
				"for a pod or container. Security context settings include " +
				"discretionary access control, running as a specific user, Linux " +
				"capabilities, and seccomp profiles.",
			Sections: []schema.PageSection{
				{
					Title: "Set the security context for a pod", Level: 2,
					Content: "Security settings specified at the pod level under " +
						"spec.securityContext apply to all containers in the pod. runAsUser " +
						"specifies the user ID for all processes; runAsNonRoot requires the " +
						"container to run as a non-root user; fsGroup controls the group " +
						"ownership of mounted volumes. Container-level settings override " +
						"pod-level settings for that container.",
				},
				{
					Title: "Set the security context for a container", Level: 2,
					Content: "Container settings under containers[].securityContext include " +
						"allowPrivilegeEscalation, which controls whether a process can gain " +
						"more privileges than its parent, readOnlyRootFilesystem, which " +
						"mounts the container's root filesystem as read-only, and " +
						"capabilities, which grants or removes Linux capabilities. Drop ALL " +
						"capabilities and add back only the ones the workload needs.",
				},
				{
					Title: "Run as non-root", Level: 2,
					Content: "Set runAsNonRoot: true and runAsUser to a non-zero UID so the " +
						"container never runs as root. Running as UID 0 inside a container " +
						"maps to root on the node in the absence of user namespaces, which " +
						"amplifies the impact of a container escape.",
				},
			},
			Metadata: map[string]string{"source": "static"},
			URL:      "static://security-context",
			Version:  v,
		},
		{
			Title: "Network Policies",
			Content: "NetworkPolicies let you control traffic flow at the IP address or " +
				"port level between pods, namespaces and external endpoints. By " +
				"default, pods accept traffic from any source; a NetworkPolicy " +
				"selecting a pod restricts its allowed connections.",
			Sections: []schema.PageSection{
				{
					Title: "Default deny", Level: 2,
					Content: "A policy with an empty podSelector and no ingress rules denies " +
						"all inbound traffic to every pod in the namespace. Starting from a " +
						"default-deny baseline and allowing only required flows limits " +
						"lateral movement if a pod is compromised.",
				},
				{
					Title: "Isolating sensitive workloads", Level: 2,
					Content: "Combine namespace selectors and pod selectors to restrict " +
						"which workloads can reach sensitive services. Egress rules can " +
						"prevent compromised pods from reaching the metadata service or " +
						"exfiltrating data to external hosts.",
				},
			},
			Metadata: map[string]string{"source": "static"},
			URL:      "static://network-policies",
			Version:  v,
		},
	}
}
