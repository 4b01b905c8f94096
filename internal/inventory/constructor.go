package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/spf13/cast"
)

var invalidGroupChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeGroupName replaces every character not allowed in a group name
// with an underscore
func SanitizeGroupName(name string) string {
	return invalidGroupChars.ReplaceAllString(name, "_")
}

// Constructor evaluates compose, conditional group and keyed group rules
// against host variables and applies the results to a Store.
//
// Rules are Go text/template expressions with the sprig function set. A rule
// without "{{" is treated as a bare expression, so ".role" and
// `eq .role "bmc"` are both valid.
type Constructor struct {
	store            Store
	leadingSeparator bool
	logger           *slog.Logger

	funcs template.FuncMap
	mu    sync.Mutex
	tmpls map[string]*template.Template
}

// ConstructorOption configures a Constructor
type ConstructorOption func(*Constructor)

// WithLeadingSeparator controls whether keyed groups without a prefix start
// with their separator. Defaults to true.
func WithLeadingSeparator(on bool) ConstructorOption {
	return func(c *Constructor) { c.leadingSeparator = on }
}

// WithLogger sets the logger used for skipped rules
func WithLogger(logger *slog.Logger) ConstructorOption {
	return func(c *Constructor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewConstructor creates a Constructor writing to store
func NewConstructor(store Store, opts ...ConstructorOption) *Constructor {
	c := &Constructor{
		store:            store,
		leadingSeparator: true,
		logger:           slog.Default(),
		funcs:            newFuncMap(),
		tmpls:            make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "constructor")
	return c
}

// SetComposedVariables evaluates each compose rule in name order and stores
// the result as a host variable. Later rules see the values of earlier ones.
func (c *Constructor) SetComposedVariables(compose map[string]string, vars map[string]any, host string, strict bool) error {
	scope := make(map[string]any, len(vars)+len(compose))
	for k, v := range vars {
		scope[k] = v
	}

	for _, name := range sortedKeys(compose) {
		value, err := c.compose(compose[name], scope)
		if err != nil {
			if strict {
				return &GroupingRuleError{Kind: RuleCompose, Rule: name, Host: host, Err: err}
			}
			c.logger.Debug("compose rule skipped", "rule", name, "host", host, "error", err)
			continue
		}
		if err := c.store.SetVariable(host, name, value); err != nil {
			return err
		}
		scope[name] = value
	}
	return nil
}

// AddHostToConditionalGroups adds the host to every group whose condition
// evaluates to true
func (c *Constructor) AddHostToConditionalGroups(groups map[string]string, vars map[string]any, host string, strict bool) error {
	for _, name := range sortedKeys(groups) {
		ok, err := c.condition(groups[name], vars)
		if err != nil {
			if strict {
				return &GroupingRuleError{Kind: RuleGroups, Rule: name, Host: host, Err: err}
			}
			c.logger.Debug("group rule skipped", "rule", name, "host", host, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if err := c.store.AddHostToGroup(SanitizeGroupName(name), host); err != nil {
			return err
		}
	}
	return nil
}

// AddHostToKeyedGroups adds the host to groups named after the value of
// each keyed group's key
func (c *Constructor) AddHostToKeyedGroups(keyed []KeyedGroup, vars map[string]any, host string, strict bool) error {
	for i, kg := range keyed {
		rule := kg.Key
		if rule == "" {
			rule = fmt.Sprintf("#%d", i+1)
		}
		ruleErr := func(err error) error {
			return &GroupingRuleError{Kind: RuleKeyedGroups, Rule: rule, Host: host, Err: err}
		}

		if kg.Key == "" {
			if strict {
				return ruleErr(errors.New("no key entry"))
			}
			continue
		}
		if err := kg.Validate(); err != nil {
			return ruleErr(err)
		}

		key, err := c.compose(kg.Key, vars)
		if err != nil {
			if strict {
				return ruleErr(err)
			}
			c.logger.Debug("keyed group rule skipped", "rule", rule, "host", host, "error", err)
			continue
		}

		names, err := kg.rawGroupNames(key)
		if err != nil {
			return ruleErr(err)
		}
		if len(names) == 0 {
			if strict && !isEmptyCollection(key) {
				return ruleErr(errors.New("key resulted empty"))
			}
			continue
		}

		for _, bare := range names {
			group := c.keyedGroupName(kg, bare)
			if err := c.store.AddHostToGroup(group, host); err != nil {
				return err
			}
			if kg.ParentGroup != "" {
				if err := c.store.AddChildGroup(SanitizeGroupName(kg.ParentGroup), group); err != nil {
					return ruleErr(err)
				}
			}
		}
	}
	return nil
}

// Validate checks option combinations that are never valid
func (kg KeyedGroup) Validate() error {
	if kg.DefaultValue != nil && kg.TrailingSeparator != nil {
		return errors.New("default_value and trailing_separator are mutually exclusive")
	}
	return nil
}

func (kg KeyedGroup) separator() string {
	if kg.Separator == nil {
		return "_"
	}
	return *kg.Separator
}

func (kg KeyedGroup) rawGroupNames(key any) ([]string, error) {
	sep := kg.separator()

	switch v := key.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			if kg.DefaultValue == nil {
				return nil, nil
			}
			return []string{*kg.DefaultValue}, nil
		}
		return []string{v}, nil
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			name := toString(item)
			if name == "" && kg.DefaultValue != nil {
				name = *kg.DefaultValue
			}
			names = append(names, name)
		}
		return names, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		names := make([]string, 0, len(v))
		for _, k := range keys {
			val := toString(v[k])
			name := k + sep + val
			if val == "" {
				switch {
				case kg.DefaultValue != nil:
					name = k + sep + *kg.DefaultValue
				case kg.TrailingSeparator != nil && !*kg.TrailingSeparator:
					name = k
				}
			}
			names = append(names, name)
		}
		return names, nil
	case bool, int64, float64:
		return []string{toString(v)}, nil
	default:
		return nil, fmt.Errorf("invalid group name format %T, expected a string, a list or a mapping", key)
	}
}

func (c *Constructor) keyedGroupName(kg KeyedGroup, bare string) string {
	sep := kg.separator()
	if kg.Prefix == "" && !c.leadingSeparator {
		sep = ""
	}
	return SanitizeGroupName(kg.Prefix + sep + bare)
}

func isTemplate(rule string) bool {
	return strings.Contains(rule, "{{")
}

// compose evaluates a rule. Bare expressions keep their type; templates
// always produce a string.
func (c *Constructor) compose(rule string, vars map[string]any) (any, error) {
	if isTemplate(rule) {
		return c.render(rule, vars)
	}
	out, err := c.render("{{ ("+rule+") | mustToJson }}", vars)
	if err != nil {
		return nil, err
	}
	return decodeValue(out)
}

func (c *Constructor) condition(rule string, vars map[string]any) (bool, error) {
	text := rule
	if !isTemplate(rule) {
		text = "{{ if " + rule + " }}true{{ else }}false{{ end }}"
	}
	out, err := c.render(text, vars)
	if err != nil {
		return false, err
	}
	return truthy(out), nil
}

func (c *Constructor) render(text string, vars map[string]any) (string, error) {
	tmpl, err := c.parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Constructor) parse(text string) (*template.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tmpl, ok := c.tmpls[text]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New("rule").
		Option("missingkey=error").
		Funcs(c.funcs).
		Parse(text)
	if err != nil {
		return nil, err
	}
	c.tmpls[text] = tmpl
	return tmpl, nil
}

func decodeValue(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode rule result: %w", err)
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalize(t[k])
		}
		return t
	default:
		return v
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1", "y", "t":
		return true
	}
	return false
}

func isEmptyCollection(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func toString(v any) string {
	return cast.ToString(v)
}
