package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/domain"
)

const (
	defaultConfidence      = 70
	fallbackBaseConfidence = 50
	fallbackStepConfidence = 10
	fallbackMaxConfidence  = 75
	noMatchConfidence      = 30
)

// Generator is the slice of the AI client the engine needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine turns ticket text into a department and a confidence score.
// Categorization is total: when Claude is unreachable or keeps
// answering off-format, the keyword fallback decides.
type Engine struct {
	generator  Generator
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewEngine builds the categorization engine. A nil generator skips
// straight to the fallback.
func NewEngine(generator Generator, cfg config.AIConfig, logger *zap.Logger) *Engine {
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &Engine{
		generator:  generator,
		maxRetries: retries,
		retryDelay: cfg.RetryDelay(),
		logger:     logger,
	}
}

// Available reports whether the Claude client is configured.
func (e *Engine) Available() bool {
	return e.generator != nil
}

// Categorize resolves the department for a ticket. Never fails: AI
// attempts are bounded and every exit path lands on a department from
// the closed set with a confidence in [0,100].
func (e *Engine) Categorize(ctx context.Context, title, description string) (string, int) {
	if e.generator != nil {
		prompt := buildPrompt(title, description)

		for attempt := 1; attempt <= e.maxRetries; attempt++ {
			e.logger.Info("ai categorization attempt",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", e.maxRetries))

			reply, err := e.generator.Generate(ctx, prompt)
			if err == nil {
				department, confidence, confidenceSet := parseReply(reply)
				if department != "" {
					if !confidenceSet {
						confidence = defaultConfidence
					}
					e.logger.Info("categorized",
						zap.String("department", department),
						zap.Int("confidence", confidence))
					return department, confidence
				}
				e.logger.Warn("invalid department in ai response", zap.String("reply", reply))
				continue
			}

			e.logger.Error("ai categorization error", zap.Int("attempt", attempt), zap.Error(err))
			if attempt < e.maxRetries {
				select {
				case <-ctx.Done():
					e.logger.Warn("categorization cancelled; using fallback")
					return e.fallback(title, description)
				case <-time.After(e.retryDelay):
				}
			}
		}
		e.logger.Warn("all ai categorization attempts failed, using fallback")
	}
	return e.fallback(title, description)
}

// buildPrompt embeds the ticket text and the department rulebook, and
// mandates the two-line reply format the parser expects.
func buildPrompt(title, description string) string {
	return fmt.Sprintf(`Categorize this support ticket into exactly one of these departments: IT Support, HR, Facilities, Finance, or General.

Ticket Title: %s
Ticket Description: %s

Respond in this exact format:
Department: [department name]
Confidence: [number from 0-100]

Rules:
- IT Support: Technical issues, software, hardware, network, passwords, computers, internet, email, applications
- HR: Employee relations, benefits, payroll, hiring, leave, training, performance reviews, workplace issues
- Facilities: Building maintenance, office space, equipment, cleaning, parking, security, temperature
- Finance: Budgets, expenses, invoicing, purchasing, reimbursements, accounting, financial reports
- General: Everything else that doesn't fit above categories`, title, description)
}

// parseReply scans the reply for the two expected lines. The prefixes
// are case-sensitive; the department value matches the closed set
// case-insensitively; the confidence clamps to [0,100]. Department and
// confidence decouple: either can be present without the other.
func parseReply(text string) (department string, confidence int, confidenceSet bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if value, ok := strings.CutPrefix(line, "Department:"); ok {
			if canonical, matched := domain.NormalizeDepartment(strings.TrimSpace(value)); matched {
				department = canonical
			} else {
				department = ""
			}
		} else if value, ok := strings.CutPrefix(line, "Confidence:"); ok {
			parsed, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				confidenceSet = false
				continue
			}
			confidence = clampConfidence(parsed)
			confidenceSet = true
		}
	}
	return department, confidence, confidenceSet
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// fallback scores each department by how many of its keywords occur in
// the lower-cased ticket text. Ties keep the earlier department in
// canonical order; zero matches land on General.
func (e *Engine) fallback(title, description string) (string, int) {
	text := strings.ToLower(title + " " + description)
	keywords := domain.DepartmentKeywords()

	best := ""
	bestCount := 0
	for _, dept := range domain.Departments() {
		count := 0
		for _, keyword := range keywords[dept] {
			if strings.Contains(text, keyword) {
				count++
			}
		}
		if count > bestCount {
			best = dept
			bestCount = count
		}
	}

	if bestCount == 0 {
		e.logger.Info("fallback categorization",
			zap.String("department", domain.DepartmentGeneral),
			zap.Int("confidence", noMatchConfidence))
		return domain.DepartmentGeneral, noMatchConfidence
	}

	confidence := fallbackBaseConfidence + bestCount*fallbackStepConfidence
	if confidence > fallbackMaxConfidence {
		confidence = fallbackMaxConfidence
	}
	e.logger.Info("fallback categorization",
		zap.String("department", best),
		zap.Int("confidence", confidence))
	return best, confidence
}
