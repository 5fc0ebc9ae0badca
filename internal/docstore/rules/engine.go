// Package rules evaluates CEL access rules against document store operations.
package rules

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"codbank/internal/shared/errors"
	"codbank/internal/shared/logger"

	"github.com/google/cel-go/cel"
)

// Operation is the kind of access being checked.
type Operation string

const (
	OpRead   Operation = "read"
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

var ErrAccessDenied = errors.ErrAccessDenied

// Rule grants or refuses operations on paths matching Match. Match segments of the
// form {name} bind one segment, {name=**} binds the rest of the path.
type Rule struct {
	Match string
	Allow map[Operation]string
	Deny  map[Operation]string
}

// Auth is the caller as seen by rule expressions.
type Auth struct {
	UID  string
	Role string
}

// Subject describes one access attempt.
type Subject struct {
	Auth    *Auth
	Path    string
	Request map[string]interface{}
}

type compiledRule struct {
	rule  Rule
	match *regexp.Regexp
	allow map[Operation]cel.Program
	deny  map[Operation]cel.Program
}

// Engine holds compiled rules. It is safe for concurrent use once built.
type Engine struct {
	rules  []*compiledRule
	logger logger.Logger
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("auth", cel.DynType),
		cel.Variable("request", cel.DynType),
		cel.Variable("path", cel.StringType),
		cel.Variable("ownerId", cel.StringType),
		cel.Variable("variables", cel.MapType(cel.StringType, cel.StringType)),
	)
}

// NewEngine compiles rules. Rules are tried in order; the first one that allows wins,
// and a matching deny ends the evaluation.
func NewEngine(rules []Rule, log logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	engine := &Engine{logger: log.WithComponent("rules")}
	for _, rule := range rules {
		compiled, err := compileRule(env, rule)
		if err != nil {
			return nil, err
		}
		engine.rules = append(engine.rules, compiled)
	}
	return engine, nil
}

func compileRule(env *cel.Env, rule Rule) (*compiledRule, error) {
	match, err := compileMatchPattern(rule.Match)
	if err != nil {
		return nil, fmt.Errorf("failed to compile match pattern '%s': %w", rule.Match, err)
	}

	compiled := &compiledRule{
		rule:  rule,
		match: match,
		allow: make(map[Operation]cel.Program),
		deny:  make(map[Operation]cel.Program),
	}
	for op, expr := range rule.Allow {
		program, err := compileExpression(env, expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile allow condition for operation '%s': %w", op, err)
		}
		compiled.allow[op] = program
	}
	for op, expr := range rule.Deny {
		program, err := compileExpression(env, expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile deny condition for operation '%s': %w", op, err)
		}
		compiled.deny[op] = program
	}
	return compiled, nil
}

var (
	recursiveVar = regexp.MustCompile(`\\\{([A-Za-z_][A-Za-z0-9_]*)=\\\*\\\*\\\}`)
	singleVar    = regexp.MustCompile(`\\\{([A-Za-z_][A-Za-z0-9_]*)\\\}`)
)

func compileMatchPattern(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(strings.Trim(pattern, "/"))
	quoted = recursiveVar.ReplaceAllString(quoted, `(?P<$1>.+)`)
	quoted = singleVar.ReplaceAllString(quoted, `(?P<$1>[^/]+)`)
	return regexp.Compile("^" + quoted + "$")
}

func compileExpression(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}
	return env.Program(ast)
}

// Allow returns nil when some rule grants op on subject.Path, otherwise an authorization
// error wrapping ErrAccessDenied.
func (e *Engine) Allow(ctx context.Context, op Operation, subject Subject) error {
	path := strings.Trim(subject.Path, "/")

	for _, rule := range e.rules {
		matches := rule.match.FindStringSubmatch(path)
		if matches == nil {
			continue
		}
		vars := activation(rule.match, matches, path, subject)

		if program, ok := rule.deny[op]; ok {
			denied, err := evaluate(program, vars)
			if err != nil {
				e.logger.WithContext(ctx).Warnf("Deny condition on %s failed for %s: %v", rule.rule.Match, op, err)
				continue
			}
			if denied {
				return e.denied(op, path, rule.rule.Match)
			}
		}

		if program, ok := rule.allow[op]; ok {
			allowed, err := evaluate(program, vars)
			if err != nil {
				e.logger.WithContext(ctx).Warnf("Allow condition on %s failed for %s: %v", rule.rule.Match, op, err)
				continue
			}
			if allowed {
				return nil
			}
		}
	}

	return e.denied(op, path, "")
}

func (e *Engine) denied(op Operation, path, rule string) error {
	appErr := errors.NewAuthorizationError("access denied").
		WithCause(ErrAccessDenied).
		WithComponent("rules").
		WithDetail("operation", string(op)).
		WithDetail("path", path)
	if rule != "" {
		appErr = appErr.WithDetail("rule", rule)
	}
	return appErr
}

func activation(match *regexp.Regexp, matches []string, path string, subject Subject) map[string]interface{} {
	variables := make(map[string]string)
	for i, name := range match.SubexpNames() {
		if i != 0 && name != "" && i < len(matches) {
			variables[name] = matches[i]
		}
	}

	var auth interface{}
	if subject.Auth != nil && subject.Auth.UID != "" {
		auth = map[string]interface{}{
			"uid":  subject.Auth.UID,
			"role": subject.Auth.Role,
		}
	}

	request := subject.Request
	if request == nil {
		request = map[string]interface{}{}
	}

	return map[string]interface{}{
		"auth":      auth,
		"request":   request,
		"path":      path,
		"ownerId":   variables["uid"],
		"variables": variables,
	}
}

func evaluate(program cel.Program, vars map[string]interface{}) (bool, error) {
	out, _, err := program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean value")
	}
	return result, nil
}
