package scan

type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactModerate Impact = "moderate"
	ImpactSerious  Impact = "serious"
	ImpactCritical Impact = "critical"
)

// Impacts is ordered least to most urgent.
var Impacts = []Impact{ImpactMinor, ImpactModerate, ImpactSerious, ImpactCritical}

func (i Impact) Valid() bool {
	switch i {
	case ImpactMinor, ImpactModerate, ImpactSerious, ImpactCritical:
		return true
	default:
		return false
	}
}

// Rank orders impacts; unknown impacts rank below minor.
func (i Impact) Rank() int {
	for idx, v := range Impacts {
		if v == i {
			return idx
		}
	}
	return -1
}

type ViolationNode struct {
	HTML           string   `json:"html" yaml:"html"`
	Target         []string `json:"target" yaml:"target"`
	FailureSummary string   `json:"failureSummary" yaml:"failureSummary"`
}

// Violation is one axe rule failure as reported by the audit.
type Violation struct {
	ID          string          `json:"id" yaml:"id"`
	Impact      Impact          `json:"impact" yaml:"impact"`
	Description string          `json:"description" yaml:"description"`
	Help        string          `json:"help" yaml:"help"`
	HelpURL     string          `json:"helpUrl" yaml:"helpUrl"`
	Tags        []string        `json:"tags" yaml:"tags"`
	Nodes       []ViolationNode `json:"nodes" yaml:"nodes"`
}

// AuditReport is what the orchestrator hands to the store.
type AuditReport struct {
	URL        string
	Violations []Violation
	PageHTML   string
	TestEngine string
}
