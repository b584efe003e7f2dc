package catalog

import "github.com/alevsk/podsec-advisor/internal/schema"

const sourcePSS = "Kubernetes Pod Security Standards"

// securityFields is the static knowledge base derived from the Kubernetes
// Pod Security Standards documentation.
var securityFields = []FieldSpec{
	{
		FieldName:   "runAsNonRoot",
		FieldPath:   "spec.securityContext.runAsNonRoot",
		Description: "Controls whether the container must run as a non-root user. When set to true, the kubelet validates at runtime that the container does not run as UID 0.",
		PolicyLevel: schema.PolicyLevelBaseline,

		VersionAdded:     "1.0",
		DefaultValue:     "false",
		AcceptableValues: []string{"true", "false"},
		SecurityImpact:   "Running containers as non-root users significantly reduces the attack surface. If a container running as root is compromised, the attacker gains full access to the container and a much easier path to the host.",
		YAMLExample: `apiVersion: v1
kind: Pod
metadata:
  name: secure-pod
spec:
  securityContext:
    runAsNonRoot: true
    runAsUser: 1000
  containers:
  - name: app
    image: nginx:alpine
`,
		CommonPitfalls: []string{
			"Setting runAsNonRoot: true without specifying runAsUser",
			"Using UID 0 (root) even when runAsNonRoot is true",
			"Not ensuring the container image supports non-root execution",
		},
		RemediationSteps: []string{
			"Set runAsNonRoot: true in pod securityContext",
			"Specify a non-zero runAsUser (e.g., 1000)",
			"Ensure container image supports non-root execution",
			"Test the application works correctly as non-root",
		},
		RelatedFields:  []string{"runAsUser", "runAsGroup", "fsGroup", "supplementalGroups"},
		CVEReferences:  []string{"CVE-2019-5736", "CVE-2021-30465"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "allowPrivilegeEscalation",
		FieldPath:        "spec.securityContext.allowPrivilegeEscalation",
		Description:      "Controls whether a process can gain more privileges than its parent process, including via setuid binaries. Maps to the no_new_privs flag on Linux.",
		PolicyLevel:      schema.PolicyLevelBaseline,
		VersionAdded:     "1.8",
		DefaultValue:     "true",
		AcceptableValues: []string{"false", "true"},
		SecurityImpact:   "When set to false, prevents privilege escalation attacks where a process gains additional privileges through mechanisms like setuid binaries. Essential for defense in depth.",
		YAMLExample: `apiVersion: v1
kind: Pod
metadata:
  name: secure-pod
spec:
  securityContext:
    allowPrivilegeEscalation: false
  containers:
  - name: app
    image: nginx:alpine
`,
		CommonPitfalls: []string{
			"Not setting allowPrivilegeEscalation to false",
			"Confusing with privileged containers",
		},
		RemediationSteps: []string{
			"Set allowPrivilegeEscalation: false in pod securityContext",
			"Test that the application doesn't require privilege escalation",
			"Ensure no setuid binaries are needed",
		},
		RelatedFields:  []string{"privileged", "runAsNonRoot", "capabilities"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "privileged",
		FieldPath:        "spec.containers[].securityContext.privileged",
		Description:      "Controls whether the container runs in privileged mode. Privileged containers have access to all capabilities and host devices.",
		PolicyLevel:      schema.PolicyLevelPrivileged,
		VersionAdded:     "1.0",
		DefaultValue:     "false",
		AcceptableValues: []string{"false", "true"},
		SecurityImpact:   "Privileged containers have access to all Linux capabilities and host devices. This essentially gives the container root access to the host system.",
		YAMLExample: `# Do not do this in production
apiVersion: v1
kind: Pod
metadata:
  name: privileged-pod
spec:
  containers:
  - name: app
    image: nginx:alpine
    securityContext:
      privileged: true
`,
		CommonPitfalls: []string{
			"Using privileged: true for debugging and forgetting to remove it",
			"Using privileged mode instead of specific capabilities",
		},
		RemediationSteps: []string{
			"Remove privileged: true from all containers",
			"Use specific capabilities instead of privileged mode",
			"Use security contexts and RBAC for access control",
		},
		RelatedFields:  []string{"capabilities", "allowPrivilegeEscalation", "hostPID", "hostIPC"},
		CVEReferences:  []string{"CVE-2019-5736", "CVE-2021-30465"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "readOnlyRootFilesystem",
		FieldPath:        "spec.containers[].securityContext.readOnlyRootFilesystem",
		Description:      "Controls whether the container's root filesystem is read-only, preventing attackers from writing to the filesystem or installing persistence mechanisms.",
		PolicyLevel:      schema.PolicyLevelRestricted,
		VersionAdded:     "1.0",
		DefaultValue:     "false",
		AcceptableValues: []string{"true", "false"},
		SecurityImpact:   "A read-only root filesystem prevents attackers from writing malicious files, installing backdoors, or modifying system files. A key defense against container escape and persistence attacks.",
		YAMLExample: `apiVersion: v1
kind: Pod
metadata:
  name: secure-pod
spec:
  containers:
  - name: app
    image: nginx:alpine
    securityContext:
      readOnlyRootFilesystem: true
    volumeMounts:
    - name: tmp-volume
      mountPath: /tmp
  volumes:
  - name: tmp-volume
    emptyDir: {}
`,
		CommonPitfalls: []string{
			"Setting readOnlyRootFilesystem: true without providing writable volumes",
			"Forgetting to mount /tmp, /var/log, or other writable directories",
		},
		RemediationSteps: []string{
			"Set readOnlyRootFilesystem: true in container securityContext",
			"Identify directories that need write access",
			"Mount writable volumes for necessary directories",
			"Test application functionality with read-only root",
		},
		RelatedFields:  []string{"volumeMounts", "volumes", "emptyDir"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "runAsUser",
		FieldPath:        "spec.securityContext.runAsUser",
		Description:      "Specifies the user ID to run the container process. Should be a non-zero value; works in conjunction with runAsNonRoot.",
		PolicyLevel:      schema.PolicyLevelBaseline,
		VersionAdded:     "1.0",
		DefaultValue:     "0",
		AcceptableValues: []string{"Any non-zero integer"},
		SecurityImpact:   "Running as a specific non-root user limits the potential damage from container compromise and reduces privilege escalation opportunities.",
		YAMLExample: `apiVersion: v1
kind: Pod
metadata:
  name: secure-pod
spec:
  securityContext:
    runAsUser: 1000
    runAsGroup: 3000
    fsGroup: 2000
  containers:
  - name: app
    image: nginx:alpine
`,
		CommonPitfalls: []string{
			"Using UID 0 (root) even when runAsNonRoot is true",
			"Not coordinating runAsUser with file permissions",
		},
		RemediationSteps: []string{
			"Set runAsUser to a non-zero value (e.g., 1000)",
			"Ensure file permissions match the user ID",
			"Test application functionality with the new user",
		},
		RelatedFields:  []string{"runAsNonRoot", "runAsGroup", "fsGroup"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "capabilities",
		FieldPath:        "spec.containers[].securityContext.capabilities",
		Description:      "Controls Linux capabilities for the container. Should drop all capabilities and add only those specifically required.",
		PolicyLevel:      schema.PolicyLevelRestricted,
		VersionAdded:     "1.0",
		DefaultValue:     "All capabilities",
		AcceptableValues: []string{"Specific capability names"},
		SecurityImpact:   "Linux capabilities provide fine-grained control over privileged operations. Dropping unnecessary capabilities reduces the attack surface and follows the principle of least privilege.",
		YAMLExample: `apiVersion: v1
kind: Pod
metadata:
  name: secure-pod
spec:
  containers:
  - name: app
    image: nginx:alpine
    securityContext:
      capabilities:
        drop:
        - ALL
        add:
        - NET_BIND_SERVICE
`,
		CommonPitfalls: []string{
			"Not dropping ALL capabilities by default",
			"Adding capabilities without understanding their security implications",
		},
		RemediationSteps: []string{
			"Drop ALL capabilities by default",
			"Add only specifically required capabilities",
			"Document why each capability is needed",
		},
		RelatedFields:  []string{"privileged", "allowPrivilegeEscalation"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "hostPID",
		FieldPath:        "spec.hostPID",
		Description:      "Controls whether the pod shares the host's process ID namespace and can see all processes on the host.",
		PolicyLevel:      schema.PolicyLevelPrivileged,
		VersionAdded:     "1.0",
		DefaultValue:     "false",
		AcceptableValues: []string{"false", "true"},
		SecurityImpact:   "When enabled, the container can see all processes on the host, including those from other containers and the host system, enabling information disclosure and privilege escalation attacks.",
		YAMLExample: `# Do not do this in production
apiVersion: v1
kind: Pod
metadata:
  name: dangerous-pod
spec:
  hostPID: true
  containers:
  - name: app
    image: nginx:alpine
`,
		CommonPitfalls: []string{
			"Using hostPID for debugging and forgetting to remove it",
			"Thinking hostPID is needed for process monitoring",
		},
		RemediationSteps: []string{
			"Remove hostPID: true from all pods",
			"Use Kubernetes-native monitoring tools instead",
		},
		RelatedFields:  []string{"hostIPC", "hostNetwork", "privileged"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "hostIPC",
		FieldPath:        "spec.hostIPC",
		Description:      "Controls whether the pod shares the host's IPC namespace, exposing shared memory segments and semaphores of every process on the node.",
		PolicyLevel:      schema.PolicyLevelPrivileged,
		VersionAdded:     "1.0",
		DefaultValue:     "false",
		AcceptableValues: []string{"false", "true"},
		SecurityImpact:   "When enabled, processes in the pod can read and manipulate the host's shared memory, allowing data exfiltration and interference with other workloads on the node.",
		YAMLExample: `# Do not do this in production
apiVersion: v1
kind: Pod
metadata:
  name: dangerous-pod
spec:
  hostIPC: true
  containers:
  - name: app
    image: nginx:alpine
`,
		CommonPitfalls: []string{
			"Enabling hostIPC for inter-process communication that Kubernetes primitives already provide",
		},
		RemediationSteps: []string{
			"Remove hostIPC: true from all pods",
			"Use pod-local IPC or Kubernetes Services for cross-pod communication",
		},
		RelatedFields:  []string{"hostPID", "hostNetwork", "privileged"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "hostNetwork",
		FieldPath:        "spec.hostNetwork",
		Description:      "Controls whether the pod uses the host's network namespace, giving it access to all network interfaces on the host.",
		PolicyLevel:      schema.PolicyLevelPrivileged,
		VersionAdded:     "1.0",
		DefaultValue:     "false",
		AcceptableValues: []string{"false", "true"},
		SecurityImpact:   "When enabled, the pod can access all network interfaces on the host, potentially including internal networks and services, enabling network-based attacks and information disclosure.",
		YAMLExample: `# Do not do this in production
apiVersion: v1
kind: Pod
metadata:
  name: dangerous-pod
spec:
  hostNetwork: true
  containers:
  - name: app
    image: nginx:alpine
`,
		CommonPitfalls: []string{
			"Using hostNetwork for performance optimization",
			"Thinking hostNetwork is needed for network access",
		},
		RemediationSteps: []string{
			"Remove hostNetwork: true from all pods",
			"Use Kubernetes Services for network access",
			"Configure proper network policies",
		},
		RelatedFields:  []string{"hostPID", "hostIPC", "networkPolicy"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "seccompProfile",
		FieldPath:        "spec.securityContext.seccompProfile",
		Description:      "Controls the seccomp profile applied to the container. Seccomp is a Linux kernel feature that sandboxes system calls.",
		PolicyLevel:      schema.PolicyLevelRestricted,
		VersionAdded:     "1.19",
		DefaultValue:     "Unconfined",
		AcceptableValues: []string{"RuntimeDefault", "Unconfined", "Localhost"},
		SecurityImpact:   "Seccomp profiles restrict which system calls a container can make. The RuntimeDefault profile blocks dangerous system calls that could be used for privilege escalation.",
		YAMLExample: `apiVersion: v1
kind: Pod
metadata:
  name: secure-pod
spec:
  securityContext:
    seccompProfile:
      type: RuntimeDefault
  containers:
  - name: app
    image: nginx:alpine
`,
		CommonPitfalls: []string{
			"Using Unconfined profile in production",
			"Not testing application compatibility with seccomp",
		},
		RemediationSteps: []string{
			"Set seccompProfile.type to RuntimeDefault",
			"Test application functionality with seccomp enabled",
			"Create custom profiles only if necessary",
		},
		RelatedFields:  []string{"apparmorProfile", "capabilities"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
	{
		FieldName:        "apparmorProfile",
		FieldPath:        "spec.securityContext.apparmorProfile",
		Description:      "Controls the AppArmor profile applied to the container. AppArmor is a Linux kernel security module providing mandatory access control.",
		PolicyLevel:      schema.PolicyLevelRestricted,
		VersionAdded:     "1.4",
		DefaultValue:     "Unconfined",
		AcceptableValues: []string{"RuntimeDefault", "Unconfined", "Localhost"},
		SecurityImpact:   "AppArmor profiles restrict file access, network access and other system resources, adding a layer of security beyond standard Linux permissions and capabilities.",
		YAMLExample: `apiVersion: v1
kind: Pod
metadata:
  name: secure-pod
spec:
  securityContext:
    apparmorProfile: RuntimeDefault
  containers:
  - name: app
    image: nginx:alpine
`,
		CommonPitfalls: []string{
			"Using Unconfined profile in production",
			"Not testing application compatibility with AppArmor",
		},
		RemediationSteps: []string{
			"Set apparmorProfile to RuntimeDefault",
			"Test application functionality with AppArmor enabled",
		},
		RelatedFields:  []string{"seccompProfile", "capabilities"},
		CVEReferences:  []string{"CVE-2019-5736"},
		SourceDocument: sourcePSS,
	},
}
