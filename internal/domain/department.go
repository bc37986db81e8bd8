package domain

import (
	"strings"
	"time"
)

// Department names form a closed set. Order matters: keyword-fallback
// ties resolve to the earlier entry.
const (
	DepartmentITSupport  = "IT Support"
	DepartmentHR         = "HR"
	DepartmentFacilities = "Facilities"
	DepartmentFinance    = "Finance"
	DepartmentGeneral    = "General"
)

// Departments returns the allowed department names in canonical order.
func Departments() []string {
	return []string{
		DepartmentITSupport,
		DepartmentHR,
		DepartmentFacilities,
		DepartmentFinance,
		DepartmentGeneral,
	}
}

// ValidDepartment reports whether name matches the closed set exactly.
func ValidDepartment(name string) bool {
	for _, d := range Departments() {
		if d == name {
			return true
		}
	}
	return false
}

// NormalizeDepartment matches name against the closed set
// case-insensitively and returns the canonical spelling. The second
// return is false when nothing matches.
func NormalizeDepartment(name string) (string, bool) {
	for _, d := range Departments() {
		if strings.EqualFold(d, name) {
			return d, true
		}
	}
	return "", false
}

// DepartmentKeywords maps each department to the lower-case keywords
// used by prompt hints and the categorization fallback.
func DepartmentKeywords() map[string][]string {
	return map[string][]string{
		DepartmentITSupport: {
			"computer", "laptop", "software", "hardware", "network", "internet",
			"email", "password", "login", "access", "vpn", "printer", "server",
			"database", "application", "system", "wifi", "connection", "error",
		},
		DepartmentHR: {
			"leave", "vacation", "payroll", "salary", "benefits", "insurance",
			"holiday", "sick", "resignation", "termination", "hiring", "onboarding",
			"performance", "review", "complaint", "harassment", "policy",
		},
		DepartmentFacilities: {
			"office", "building", "maintenance", "repair", "cleaning", "hvac",
			"parking", "security", "key", "card", "access", "room", "desk",
			"chair", "equipment", "supplies", "air conditioning", "heating",
		},
		DepartmentFinance: {
			"invoice", "payment", "expense", "reimbursement", "budget", "purchase",
			"vendor", "contract", "billing", "receipt", "credit", "debit", "tax",
			"accounting", "financial", "cost", "refund",
		},
		DepartmentGeneral: {
			"question", "inquiry", "request", "other", "help", "support", "general",
		},
	}
}

// Department is a catalog row in the routing service. The catalog is
// seeded from the closed set and read-only at runtime.
type Department struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
}
