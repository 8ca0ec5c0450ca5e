package engine

import (
	"fmt"
	"strings"
)

type fixTemplate struct {
	Type    string
	FixText string
	Example string
}

// ruleFixes maps known rule ids to canned remediations. kube-linter check
// names and common tfsec rules are covered; anything else gets the generic
// best-practice fix.
var ruleFixes = map[string]fixTemplate{
	"no-resources": {
		Type:    "Resource Limits Fix",
		FixText: "Add resources.requests and resources.limits to every container",
		Example: "resources:\n  requests:\n    cpu: 100m\n    memory: 128Mi\n  limits:\n    cpu: 500m\n    memory: 256Mi",
	},
	"unset-cpu-requirements": {
		Type:    "Resource Limits Fix",
		FixText: "Set cpu requests and limits on the container",
		Example: "resources:\n  requests:\n    cpu: 100m\n  limits:\n    cpu: 500m",
	},
	"unset-memory-requirements": {
		Type:    "Resource Limits Fix",
		FixText: "Set memory requests and limits on the container",
		Example: "resources:\n  requests:\n    memory: 128Mi\n  limits:\n    memory: 256Mi",
	},
	"no-liveness-probe": {
		Type:    "Health Check Fix",
		FixText: "Add a livenessProbe so the kubelet can restart a wedged container",
		Example: "livenessProbe:\n  httpGet:\n    path: /healthz\n    port: 8080\n  initialDelaySeconds: 10",
	},
	"no-readiness-probe": {
		Type:    "Health Check Fix",
		FixText: "Add a readinessProbe so traffic is only routed to ready pods",
		Example: "readinessProbe:\n  httpGet:\n    path: /ready\n    port: 8080",
	},
	"latest-tag": {
		Type:    "Image Tag Fix",
		FixText: "Replace the latest tag with a pinned, immutable image tag",
		Example: "image: registry.example.com/app:1.4.2",
	},
	"run-as-non-root": {
		Type:    "Security Context Fix",
		FixText: "Set securityContext.runAsNonRoot and a non-zero runAsUser",
		Example: "securityContext:\n  runAsNonRoot: true\n  runAsUser: 10001",
	},
	"privileged-container": {
		Type:    "Security Context Fix",
		FixText: "Remove privileged: true from the container security context",
		Example: "securityContext:\n  privileged: false",
	},
	"privilege-escalation-container": {
		Type:    "Security Context Fix",
		FixText: "Set allowPrivilegeEscalation: false on the container",
		Example: "securityContext:\n  allowPrivilegeEscalation: false",
	},
	"no-read-only-root-fs": {
		Type:    "Security Context Fix",
		FixText: "Mount the root filesystem read-only",
		Example: "securityContext:\n  readOnlyRootFilesystem: true",
	},
	"no-anti-affinity": {
		Type:    "Availability Fix",
		FixText: "Add pod anti-affinity so replicas are spread across nodes",
		Example: "affinity:\n  podAntiAffinity:\n    preferredDuringSchedulingIgnoredDuringExecution: ...",
	},
}

// Suggest maps a single finding to a remediation suggestion. It is total:
// unknown or empty rule ids yield a generic best-practice fix rather than
// an error. The returned fix references only the finding it was derived from.
func Suggest(file string, f Finding) Fix {
	if f.RuleID != "" {
		if tpl, ok := ruleFixes[f.RuleID]; ok {
			return Fix{
				File:    file,
				Type:    tpl.Type,
				Issue:   f.RawMessage,
				FixText: tpl.FixText,
				Example: tpl.Example,
			}
		}
		return Fix{
			File:    file,
			Type:    "Best Practice Fix",
			Issue:   f.RawMessage,
			FixText: fmt.Sprintf("Review the %s check documentation and adjust the manifest accordingly", f.RuleID),
		}
	}

	msg := strings.ToLower(f.RawMessage)
	switch {
	case strings.Contains(msg, "apiversion"):
		return Fix{
			File:    file,
			Type:    "API Version Fix",
			Issue:   f.RawMessage,
			FixText: "Set apiVersion to a version supported by your target cluster",
			Example: "apiVersion: apps/v1",
		}
	case strings.Contains(msg, "required"), strings.Contains(msg, "missing"):
		return Fix{
			File:    file,
			Type:    "Missing Field Fix",
			Issue:   f.RawMessage,
			FixText: "Add the missing required field named in the error to the resource definition",
		}
	case strings.Contains(msg, "schema"):
		return Fix{
			File:    file,
			Type:    "Schema Fix",
			Issue:   f.RawMessage,
			FixText: "Correct the field so it matches the resource schema for your Kubernetes version",
		}
	}

	return Fix{
		File:    file,
		Type:    "Best Practice Fix",
		Issue:   f.RawMessage,
		FixText: "Review the reported message and align the manifest with current best practices",
	}
}
