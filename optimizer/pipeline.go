package optimizer

// Applied describes a rule which changed the shader source.
type Applied struct {
	Rule        RuleID `json:"rule"`
	Description string `json:"description"`
	Impact      Impact `json:"impact"`
	SizeDiff    int    `json:"sizeDiff"`
}

// Result is the outcome of running the rule pipeline over a shader.
type Result struct {
	Source     string    `json:"-"`
	Applied    []Applied `json:"optimizations"`
	SizeBefore int       `json:"originalSize"`
	SizeAfter  int       `json:"optimizedSize"`
}

// Run evaluates every rule in order against in. A rule whose predicate
// holds rewrites the output of the rules before it. Only rules which
// changed the source length are reported as applied.
func Run(rules []Rule, src string, in Input) Result {
	res := Result{
		Source:     src,
		SizeBefore: len(src),
	}

	for i := range rules {
		r := &rules[i]
		if !r.Applies(in) {
			continue
		}

		before := len(res.Source)
		res.Source = r.Transform(res.Source)
		after := len(res.Source)

		if before != after {
			res.Applied = append(res.Applied, Applied{
				Rule:        r.ID,
				Description: r.Description,
				Impact:      r.Impact,
				SizeDiff:    after - before,
			})
		}
	}

	res.SizeAfter = len(res.Source)
	return res
}

// Rules returns the IDs of the applied rules.
func (r *Result) Rules() []RuleID {
	out := make([]RuleID, len(r.Applied))
	for i, a := range r.Applied {
		out[i] = a.Rule
	}
	return out
}
