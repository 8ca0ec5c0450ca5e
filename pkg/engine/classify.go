package engine

import "strings"

// Category is a closed taxonomy label assigned to every finding.
type Category string

const (
	CategorySchemaValidation Category = "Schema Validation"
	CategoryAPIVersion       Category = "API Version"
	CategoryMissingFields    Category = "Missing Required Fields"
	CategorySecurity         Category = "Security Configuration"
	CategoryResources        Category = "Resource Management"
	CategoryHealth           Category = "Health Monitoring"
	CategoryImage            Category = "Image Configuration"
	CategoryAvailability     Category = "Availability & Reliability"
	CategoryBestPractice     Category = "Best Practice Violations"
	CategoryOther            Category = "Other"
)

// Categories lists every taxonomy label Classify can return.
var Categories = []Category{
	CategorySchemaValidation,
	CategoryAPIVersion,
	CategoryMissingFields,
	CategorySecurity,
	CategoryResources,
	CategoryHealth,
	CategoryImage,
	CategoryAvailability,
	CategoryBestPractice,
	CategoryOther,
}

type classifyRule struct {
	keywords []string
	category Category
}

// ruleIDRules match against a finding's RuleID (kube-linter check names,
// tfsec rule ids). First match wins; order is significant.
var ruleIDRules = []classifyRule{
	{[]string{"run-as-non-root", "privilege", "privileged", "security-context", "host-network", "host-pid", "host-ipc", "secret", "capabilit"}, CategorySecurity},
	{[]string{"cpu", "memory", "resource"}, CategoryResources},
	{[]string{"liveness", "readiness", "probe", "health"}, CategoryHealth},
	{[]string{"latest-tag", "image"}, CategoryImage},
	{[]string{"affinity", "disruption", "replica", "pdb"}, CategoryAvailability},
	{[]string{"required", "missing"}, CategoryMissingFields},
}

// messageRules match against free-form diagnostic text for findings without
// a rule id. First match wins; order is significant: schema wording is the
// broadest, apiVersion must be matched before the generic required/missing
// keywords so "missing apiVersion" lands in API Version.
var messageRules = []classifyRule{
	{[]string{"schema", "validation"}, CategorySchemaValidation},
	{[]string{"apiversion"}, CategoryAPIVersion},
	{[]string{"required", "missing"}, CategoryMissingFields},
	{[]string{"securitycontext", "security context", "privilege", "runasuser", "capabilit"}, CategorySecurity},
	{[]string{"cpu", "memory", "limits", "requests"}, CategoryResources},
	{[]string{"probe", "liveness", "readiness", "health"}, CategoryHealth},
	{[]string{"latest", "tag", "image"}, CategoryImage},
	{[]string{"affinity", "disruption", "replica"}, CategoryAvailability},
}

// Classify maps a finding to exactly one taxonomy category. It is total:
// any input, including an empty finding, yields a category. Findings that
// carry a rule id are matched against the rule-id table first and fall back
// to Best Practice Violations; free-text findings are matched against the
// message table and fall back to Other.
func Classify(f Finding) Category {
	if f.RuleID != "" {
		id := strings.ToLower(f.RuleID)
		if c, ok := matchRules(ruleIDRules, id); ok {
			return c
		}
		if c, ok := matchRules(messageRules, strings.ToLower(f.RawMessage)); ok {
			return c
		}
		return CategoryBestPractice
	}

	if c, ok := matchRules(messageRules, strings.ToLower(f.RawMessage)); ok {
		return c
	}
	return CategoryOther
}

func matchRules(rules []classifyRule, text string) (Category, bool) {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.category, true
			}
		}
	}
	return "", false
}

// volumeThreshold is the total finding count above which the pipeline
// automation recommendation is added.
const volumeThreshold = 15

// Recommend derives the fixed, ordered recommendation list from category
// counts. The priority order is fixed: security first, then missing fields,
// schema, resources, health checks, image tags. The same input always
// produces the same output.
func Recommend(errorsByCategory, warningsByCategory map[Category]int) []string {
	count := func(c Category) int {
		return errorsByCategory[c] + warningsByCategory[c]
	}

	var recs []string
	if count(CategorySecurity) > 0 {
		recs = append(recs, "Harden pod security contexts: drop privileged mode, run as non-root, and avoid mounting secrets as environment variables")
	}
	if count(CategoryMissingFields) > 0 {
		recs = append(recs, "Add missing required fields in resource definitions")
	}
	if count(CategorySchemaValidation) > 0 {
		recs = append(recs, "Review and fix schema validation errors against the target Kubernetes version")
	}
	if count(CategoryResources) > 0 {
		recs = append(recs, "Set CPU and memory requests and limits on all containers")
	}
	if count(CategoryHealth) > 0 {
		recs = append(recs, "Configure liveness and readiness probes for all workloads")
	}
	if count(CategoryImage) > 0 {
		recs = append(recs, "Pin container images to immutable tags instead of latest")
	}

	total := 0
	for _, n := range errorsByCategory {
		total += n
	}
	for _, n := range warningsByCategory {
		total += n
	}
	if total > volumeThreshold {
		recs = append(recs, "Implement automated validation in your CI pipeline to catch these issues before merge")
	}
	return recs
}
