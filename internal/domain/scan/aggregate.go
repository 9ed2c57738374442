package scan

// IssuesByImpact is the per-severity violation count stored next to the raw
// list. Embedded into ScanResult as four integer columns.
type IssuesByImpact struct {
	Minor    int `gorm:"column:impact_minor;not null;default:0" json:"minor" yaml:"minor"`
	Moderate int `gorm:"column:impact_moderate;not null;default:0" json:"moderate" yaml:"moderate"`
	Serious  int `gorm:"column:impact_serious;not null;default:0" json:"serious" yaml:"serious"`
	Critical int `gorm:"column:impact_critical;not null;default:0" json:"critical" yaml:"critical"`
}

func (ibi IssuesByImpact) Total() int {
	return ibi.Minor + ibi.Moderate + ibi.Serious + ibi.Critical
}

func (ibi IssuesByImpact) Get(impact Impact) int {
	switch impact {
	case ImpactMinor:
		return ibi.Minor
	case ImpactModerate:
		return ibi.Moderate
	case ImpactSerious:
		return ibi.Serious
	case ImpactCritical:
		return ibi.Critical
	default:
		return 0
	}
}

func (ibi *IssuesByImpact) add(impact Impact, n int) {
	switch impact {
	case ImpactMinor:
		ibi.Minor += n
	case ImpactModerate:
		ibi.Moderate += n
	case ImpactSerious:
		ibi.Serious += n
	case ImpactCritical:
		ibi.Critical += n
	}
}

// CountByImpact counts violations per recognized impact. Unknown or empty
// impacts are skipped, so the sum never exceeds len(violations).
func CountByImpact(violations []Violation) IssuesByImpact {
	var out IssuesByImpact
	for _, v := range violations {
		out.add(v.Impact, 1)
	}
	return out
}

// CountNodesByImpact weights each violation by the number of DOM nodes it
// touches. Used by the dashboard summary.
func CountNodesByImpact(violations []Violation) IssuesByImpact {
	var out IssuesByImpact
	for _, v := range violations {
		out.add(v.Impact, len(v.Nodes))
	}
	return out
}

func AffectedNodes(violations []Violation) int {
	n := 0
	for _, v := range violations {
		n += len(v.Nodes)
	}
	return n
}
