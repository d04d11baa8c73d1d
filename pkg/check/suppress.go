package check

// Filter decides which raw findings survive suppression. For each finding
// the precedence is:
//
//	(a) the file matches a global-ignore glob: drop
//	(b) the file and rule match an override entry ("all" or the rule): drop
//	(c) the finding's line intersects a region whose scope is all rules
//	    or the finding's rule: drop
//	(d) otherwise: keep
//
// The first match wins. Filter is a pure function over its inputs and
// idempotent: filtering the surviving set again changes nothing.
func Filter(findings []Finding, regions []Region, overrides *Overrides) []Finding {
	var surviving []Finding
	for _, f := range findings {
		if overrides.IsFileIgnored(f.Path) {
			continue
		}
		if overrides.RuleIgnored(f.Path, f.Rule) {
			continue
		}
		if coveredByRegion(f, regions) {
			continue
		}
		surviving = append(surviving, f)
	}
	return surviving
}

func coveredByRegion(f Finding, regions []Region) bool {
	for _, r := range regions {
		if r.Covers(f.Rule, f.Line) {
			return true
		}
	}
	return false
}
