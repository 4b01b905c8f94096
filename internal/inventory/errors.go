package inventory

import "fmt"

// Rule kinds reported by GroupingRuleError
const (
	RuleCompose     = "compose"
	RuleGroups      = "groups"
	RuleKeyedGroups = "keyed_groups"
)

// GroupingRuleError is returned in strict mode when a rule fails for a host
type GroupingRuleError struct {
	Kind string
	Rule string
	Host string
	Err  error
}

func (e *GroupingRuleError) Error() string {
	return fmt.Sprintf("%s rule %q failed for host %s: %v", e.Kind, e.Rule, e.Host, e.Err)
}

func (e *GroupingRuleError) Unwrap() error { return e.Err }
