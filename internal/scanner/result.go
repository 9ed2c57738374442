package scanner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/accessly-backend/internal/domain/scan"
)

// auditExpr runs axe against the whole document and keeps only what is stored.
const auditExpr = `axe.run(document, {resultTypes: ["violations"]}).then(function (r) {
  return {violations: r.violations, testEngine: r.testEngine};
})`

const outerHTMLExpr = `document.documentElement.outerHTML`

// shadowPierce joins the selectors axe reports for an element inside one or
// more shadow roots, host first.
const shadowPierce = " >>> "

type axeNode struct {
	HTML           string            `json:"html"`
	Target         []json.RawMessage `json:"target"`
	FailureSummary string            `json:"failureSummary"`
}

type axeViolation struct {
	ID          string      `json:"id"`
	Impact      scan.Impact `json:"impact"`
	Description string      `json:"description"`
	Help        string      `json:"help"`
	HelpURL     string      `json:"helpUrl"`
	Tags        []string    `json:"tags"`
	Nodes       []axeNode   `json:"nodes"`
}

type axeResult struct {
	Violations []axeViolation `json:"violations"`
	TestEngine struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"testEngine"`
}

func decodeAxeResult(raw []byte) ([]scan.Violation, string, error) {
	var res axeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, "", fmt.Errorf("decode axe result: %w", err)
	}
	violations := make([]scan.Violation, 0, len(res.Violations))
	for _, av := range res.Violations {
		v := scan.Violation{
			ID:          av.ID,
			Impact:      av.Impact,
			Description: av.Description,
			Help:        av.Help,
			HelpURL:     av.HelpURL,
			Tags:        av.Tags,
			Nodes:       make([]scan.ViolationNode, 0, len(av.Nodes)),
		}
		if v.Tags == nil {
			v.Tags = []string{}
		}
		for _, an := range av.Nodes {
			target, err := flattenTarget(an.Target)
			if err != nil {
				return nil, "", fmt.Errorf("decode target of %s: %w", av.ID, err)
			}
			v.Nodes = append(v.Nodes, scan.ViolationNode{
				HTML:           an.HTML,
				Target:         target,
				FailureSummary: an.FailureSummary,
			})
		}
		violations = append(violations, v)
	}
	engine := ""
	if res.TestEngine.Name != "" {
		engine = res.TestEngine.Name + "@" + res.TestEngine.Version
	}
	return violations, engine, nil
}

// flattenTarget accepts plain selectors and the nested arrays axe uses for
// shadow DOM, e.g. [["#host","button"]] becomes ["#host >>> button"].
func flattenTarget(parts []json.RawMessage) ([]string, error) {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		var sel string
		if err := json.Unmarshal(p, &sel); err == nil {
			out = append(out, sel)
			continue
		}
		var chain []string
		if err := json.Unmarshal(p, &chain); err != nil {
			return nil, fmt.Errorf("unsupported selector %s", string(p))
		}
		out = append(out, strings.Join(chain, shadowPierce))
	}
	return out, nil
}
