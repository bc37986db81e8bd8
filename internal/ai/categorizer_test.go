package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/domain"
)

// scriptedGenerator replays a fixed sequence of replies and errors.
type scriptedGenerator struct {
	replies []string
	errs    []error
	calls   int
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	if i >= len(g.replies) {
		return "", errors.New("generator called more often than scripted")
	}
	return g.replies[i], g.errs[i]
}

func newTestEngine(t *testing.T, g Generator) *Engine {
	t.Helper()
	return NewEngine(g, config.AIConfig{MaxRetries: 3, RetryDelaySeconds: 0}, zap.NewNop())
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name          string
		reply         string
		department    string
		confidence    int
		confidenceSet bool
	}{
		{
			name:          "exact format",
			reply:         "Department: HR\nConfidence: 85",
			department:    "HR",
			confidence:    85,
			confidenceSet: true,
		},
		{
			name:          "value matched case insensitively",
			reply:         "Department: hr\nConfidence: 85",
			department:    "HR",
			confidence:    85,
			confidenceSet: true,
		},
		{
			name:       "tag is case sensitive",
			reply:      "department: hr\nconfidence: 85",
			department: "",
		},
		{
			name:          "confidence above range clamps to 100",
			reply:         "Department: Finance\nConfidence: 150",
			department:    "Finance",
			confidence:    100,
			confidenceSet: true,
		},
		{
			name:          "confidence below range clamps to 0",
			reply:         "Department: Finance\nConfidence: -10",
			department:    "Finance",
			confidence:    0,
			confidenceSet: true,
		},
		{
			name:       "unparsable confidence leaves department intact",
			reply:      "Department: IT Support\nConfidence: high",
			department: "IT Support",
		},
		{
			name:       "unknown department",
			reply:      "Department: Engineering\nConfidence: 90",
			department: "",
			confidence: 90, confidenceSet: true,
		},
		{
			name:          "surrounding chatter ignored",
			reply:         "Sure, here is my assessment.\n\nDepartment: Facilities\nConfidence: 72\nLet me know if you need more.",
			department:    "Facilities",
			confidence:    72,
			confidenceSet: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			department, confidence, confidenceSet := parseReply(tt.reply)
			assert.Equal(t, tt.department, department)
			assert.Equal(t, tt.confidenceSet, confidenceSet)
			if tt.confidenceSet {
				assert.Equal(t, tt.confidence, confidence)
			}
		})
	}
}

func TestCategorizeUsesModelReply(t *testing.T) {
	g := &scriptedGenerator{
		replies: []string{"Department: HR\nConfidence: 85"},
		errs:    []error{nil},
	}
	engine := newTestEngine(t, g)

	department, confidence := engine.Categorize(context.Background(), "Payroll question", "My last payslip looks wrong")

	assert.Equal(t, "HR", department)
	assert.Equal(t, 85, confidence)
	assert.Equal(t, 1, g.calls)
}

func TestCategorizeDefaultsMissingConfidence(t *testing.T) {
	g := &scriptedGenerator{
		replies: []string{"Department: Finance\nConfidence: soon"},
		errs:    []error{nil},
	}
	engine := newTestEngine(t, g)

	department, confidence := engine.Categorize(context.Background(), "Invoice", "Need a copy of last month's invoice")

	assert.Equal(t, "Finance", department)
	assert.Equal(t, 70, confidence)
}

func TestCategorizeRetriesThenSucceeds(t *testing.T) {
	g := &scriptedGenerator{
		replies: []string{"", "Department: nonsense", "Department: IT Support\nConfidence: 91"},
		errs:    []error{errors.New("rate limited"), nil, nil},
	}
	engine := newTestEngine(t, g)

	department, confidence := engine.Categorize(context.Background(), "Broken laptop", "Screen stays black")

	assert.Equal(t, "IT Support", department)
	assert.Equal(t, 91, confidence)
	assert.Equal(t, 3, g.calls)
}

func TestCategorizeFallsBackAfterExhaustedRetries(t *testing.T) {
	apiDown := errors.New("connection refused")
	g := &scriptedGenerator{
		replies: []string{"", "", ""},
		errs:    []error{apiDown, apiDown, apiDown},
	}
	engine := newTestEngine(t, g)

	department, confidence := engine.Categorize(context.Background(), "VPN not connecting", "Can't connect to VPN from home")

	assert.Equal(t, domain.DepartmentITSupport, department)
	assert.Equal(t, 60, confidence)
	assert.Equal(t, 3, g.calls)
}

func TestCategorizeWithoutModelUsesFallback(t *testing.T) {
	engine := newTestEngine(t, nil)
	assert.False(t, engine.Available())

	department, confidence := engine.Categorize(context.Background(), "VPN not connecting", "Can't connect to VPN from home")

	assert.Equal(t, domain.DepartmentITSupport, department)
	assert.Equal(t, 60, confidence)
}

func TestFallbackZeroMatchesLandsOnGeneral(t *testing.T) {
	engine := newTestEngine(t, nil)

	for _, text := range []string{"zzzz", "qqqq wwww", ""} {
		department, confidence := engine.fallback(text, text)
		assert.Equal(t, domain.DepartmentGeneral, department)
		assert.Equal(t, 30, confidence)
	}
}

func TestFallbackConfidenceGrowsWithMatchesAndCaps(t *testing.T) {
	engine := newTestEngine(t, nil)

	oneMatch := "vpn"
	twoMatches := "vpn and printer"
	manyMatches := "vpn printer laptop password wifi server email network"

	_, c1 := engine.fallback(oneMatch, "")
	_, c2 := engine.fallback(twoMatches, "")
	_, cMax := engine.fallback(manyMatches, "")

	assert.Equal(t, 60, c1)
	assert.Equal(t, 70, c2)
	assert.LessOrEqual(t, c1, c2)
	assert.Equal(t, 75, cMax)
}

func TestFallbackTieKeepsEarlierDepartment(t *testing.T) {
	engine := newTestEngine(t, nil)

	// one IT Support keyword and one HR keyword
	department, _ := engine.fallback("vpn payroll", "")
	assert.Equal(t, domain.DepartmentITSupport, department)
}

func TestCategorizeIsTotal(t *testing.T) {
	engine := newTestEngine(t, nil)

	inputs := [][2]string{
		{"", ""},
		{"office chair broken", "the chair in room 4 collapsed"},
		{"payroll", "vacation"},
		{"refund", "invoice vendor tax"},
	}
	for _, in := range inputs {
		department, confidence := engine.Categorize(context.Background(), in[0], in[1])
		assert.True(t, domain.ValidDepartment(department), "department %q", department)
		assert.GreaterOrEqual(t, confidence, 0)
		assert.LessOrEqual(t, confidence, 100)
	}
}
