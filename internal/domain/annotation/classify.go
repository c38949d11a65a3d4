package annotation

import "strings"

// Category is the keyword-derived topic bucket attached to every annotation.
// Panel-level category filters operate on these values.
type Category string

const (
	CategoryFinancial   Category = "financial"
	CategoryLegal       Category = "legal"
	CategoryTechnical   Category = "technical"
	CategoryStrategic   Category = "strategic"
	CategoryCompliance  Category = "compliance"
	CategorySecurity    Category = "security"
	CategoryOperational Category = "operational"
	CategoryGeneral     Category = "general"
)

// Severity grades risk annotations for the level filter.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

func containsAny(lower string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// InsightCategory buckets an insight by keyword scan of its display text.
func InsightCategory(text string) Category {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "financial", "money", "cost"):
		return CategoryFinancial
	case containsAny(lower, "legal", "contract", "agreement"):
		return CategoryLegal
	case containsAny(lower, "technical", "system", "process"):
		return CategoryTechnical
	case containsAny(lower, "strategic", "business", "objective"):
		return CategoryStrategic
	default:
		return CategoryGeneral
	}
}

// RiskCategory buckets a risk by keyword scan of its display text.
func RiskCategory(text string) Category {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "compliance", "regulatory", "legal"):
		return CategoryCompliance
	case containsAny(lower, "financial", "cost", "budget"):
		return CategoryFinancial
	case containsAny(lower, "security", "privacy", "data"):
		return CategorySecurity
	case containsAny(lower, "operational", "process", "workflow"):
		return CategoryOperational
	default:
		return CategoryGeneral
	}
}

// RiskSeverity grades a risk by keyword scan of its display text.  Unmatched
// text defaults to medium.
func RiskSeverity(text string) Severity {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "critical", "severe", "major"):
		return SeverityCritical
	case containsAny(lower, "significant", "important", "concerning"):
		return SeverityHigh
	default:
		return SeverityMedium
	}
}
