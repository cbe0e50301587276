// Package validate checks generated dashboards and rule files for PromQL
// syntax errors and references to metrics the picker does not export.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/unsplash-picker/tools/dashgen/rules"
)

// Result collects problems found during validation. Errors make the
// artifact unusable; warnings are reported but do not fail generation.
type Result struct {
	Errors   []error
	Warnings []string
}

// Ok reports whether validation found no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Errorf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// panelJSON is the subset of the Grafana panel model needed to reach
// query expressions. Row panels carry their children under "panels".
type panelJSON struct {
	Type    string      `json:"type"`
	Title   string      `json:"title"`
	Targets []queryJSON `json:"targets"`
	Panels  []panelJSON `json:"panels"`
}

type queryJSON struct {
	RefID string `json:"refId"`
	Expr  string `json:"expr"`
}

// Dashboard validates every query in the dashboard against known.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.errorf("marshaling dashboard: %w", err)
		return res
	}

	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		res.errorf("decoding dashboard: %w", err)
		return res
	}

	for _, p := range doc.Panels {
		if p.Type == "row" {
			for _, child := range p.Panels {
				checkPanel(&res, child, known)
			}
			continue
		}
		checkPanel(&res, p, known)
	}
	return res
}

// Rules validates every expression in the rule CR against known and
// rejects duplicate rule names. Names recorded by the CR itself count as
// known for later rules.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result

	seen := make(map[string]bool, len(known))
	for name := range known {
		seen[name] = true
	}

	names := make(map[string]bool)
	for _, name := range cr.Names() {
		if name != "" && names[name] {
			res.errorf("duplicate rule name %q", name)
		}
		names[name] = true
	}

	for _, g := range cr.Spec.Groups {
		if len(g.Rules) == 0 {
			res.warnf("group %q has no rules", g.Name)
		}
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			if name == "" {
				res.errorf("group %q: rule with expr %q has neither record nor alert", g.Name, r.Expr)
				continue
			}
			checkExpr(&res, fmt.Sprintf("rule %q", name), r.Expr, seen)
			if r.Record != "" {
				seen[r.Record] = true
			}
			if r.Alert != "" && r.Labels["severity"] == "" {
				res.warnf("alert %q has no severity label", r.Alert)
			}
		}
	}
	return res
}

func checkPanel(res *Result, p panelJSON, known map[string]bool) {
	if len(p.Targets) == 0 {
		res.warnf("panel %q has no queries", p.Title)
		return
	}

	refs := make(map[string]bool, len(p.Targets))
	for _, t := range p.Targets {
		if refs[t.RefID] {
			res.errorf("panel %q: duplicate refId %q", p.Title, t.RefID)
		}
		refs[t.RefID] = true
		checkExpr(res, fmt.Sprintf("panel %q query %s", p.Title, t.RefID), t.Expr, known)
	}
}

func checkExpr(res *Result, where, expr string, known map[string]bool) {
	if expr == "" {
		res.errorf("%s: empty expression", where)
		return
	}

	names, err := MetricNames(expr)
	if err != nil {
		res.errorf("%s: %w", where, err)
		return
	}
	for _, name := range names {
		if !known[name] {
			res.errorf("%s: unknown metric %q", where, name)
		}
	}
}

// MetricNames parses expr and returns the sorted, de-duplicated metric
// names it selects.
func MetricNames(expr string) ([]string, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", expr, err)
	}

	set := make(map[string]bool)
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			set[vs.Name] = true
		}
		return nil
	})

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
