package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyByRuleID(t *testing.T) {
	cases := []struct {
		ruleID string
		want   Category
	}{
		{"run-as-non-root", CategorySecurity},
		{"privileged-container", CategorySecurity},
		{"no-resources", CategoryResources},
		{"unset-cpu-requirements", CategoryResources},
		{"unset-memory-requirements", CategoryResources},
		{"no-liveness-probe", CategoryHealth},
		{"no-readiness-probe", CategoryHealth},
		{"latest-tag", CategoryImage},
		{"no-anti-affinity", CategoryAvailability},
		{"minimum-three-replicas", CategoryAvailability},
	}
	for _, tc := range cases {
		got := Classify(Finding{RuleID: tc.ruleID, RawMessage: "x"})
		assert.Equal(t, tc.want, got, "rule id %s", tc.ruleID)
	}
}

func TestClassifyUnknownRuleIDFallsBackToBestPractice(t *testing.T) {
	got := Classify(Finding{RuleID: "dangling-service", RawMessage: "no pods matched"})
	assert.Equal(t, CategoryBestPractice, got)
}

func TestClassifyByMessage(t *testing.T) {
	cases := []struct {
		message string
		want    Category
	}{
		{"failed schema validation for Deployment", CategorySchemaValidation},
		{"missing apiVersion field", CategoryAPIVersion},
		{"apiVersion extensions/v1beta1 is deprecated", CategoryAPIVersion},
		{"field selector is required", CategoryMissingFields},
		{"container runs with privilege escalation", CategorySecurity},
		{"container has no cpu limits set", CategoryResources},
		{"no liveness probe configured", CategoryHealth},
		{"uses the latest tag", CategoryImage},
		{"only one replica configured", CategoryAvailability},
	}
	for _, tc := range cases {
		got := Classify(Finding{RawMessage: tc.message})
		assert.Equal(t, tc.want, got, "message %q", tc.message)
	}
}

// The message table is ordered: "missing apiVersion" must land in API Version
// even though it also contains the missing-fields keyword.
func TestClassifyAPIVersionBeatsMissingField(t *testing.T) {
	got := Classify(Finding{RawMessage: "resource is missing apiVersion"})
	assert.Equal(t, CategoryAPIVersion, got)
}

func TestClassifyIsTotal(t *testing.T) {
	inputs := []Finding{
		{},
		{RawMessage: ""},
		{RawMessage: "completely unrelated text"},
		{RuleID: "???", RawMessage: "???"},
		{RawMessage: "\x00\xff"},
	}
	known := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}
	for _, f := range inputs {
		got := Classify(f)
		assert.True(t, known[got], "Classify(%+v) returned unknown category %q", f, got)
	}
}

func TestClassifyEmptyMessageIsOther(t *testing.T) {
	assert.Equal(t, CategoryOther, Classify(Finding{RawMessage: ""}))
}

func TestRecommendPriorityOrder(t *testing.T) {
	errs := map[Category]int{
		CategorySchemaValidation: 1,
		CategorySecurity:         2,
		CategoryMissingFields:    1,
	}
	warns := map[Category]int{
		CategoryResources: 1,
		CategoryHealth:    1,
		CategoryImage:     1,
	}

	recs := Recommend(errs, warns)
	assert.Len(t, recs, 6)
	assert.Contains(t, recs[0], "security")
	assert.Contains(t, recs[1], "missing required fields")
	assert.Contains(t, recs[2], "schema validation")
	assert.Contains(t, recs[3], "CPU and memory")
	assert.Contains(t, recs[4], "liveness and readiness")
	assert.Contains(t, recs[5], "immutable tags")
}

func TestRecommendDeterministic(t *testing.T) {
	errs := map[Category]int{CategorySecurity: 1, CategoryResources: 3}
	first := Recommend(errs, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Recommend(errs, nil))
	}
}

func TestRecommendVolumeThreshold(t *testing.T) {
	recs := Recommend(map[Category]int{CategoryResources: volumeThreshold}, nil)
	for _, r := range recs {
		assert.NotContains(t, r, "CI pipeline")
	}

	recs = Recommend(map[Category]int{CategoryResources: volumeThreshold + 1}, nil)
	assert.Contains(t, recs[len(recs)-1], "CI pipeline")
}

func TestRecommendEmptyInput(t *testing.T) {
	assert.Empty(t, Recommend(nil, nil))
}
