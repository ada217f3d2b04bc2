package runtime

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kates/vector/decl"
)

var (
	ErrNotMap        = errors.New("event root must be a map")
	ErrUnknownPolicy = errors.New("unknown error policy")
	ErrNilProgram    = errors.New("transform has no program")
	ErrNilEvent      = errors.New("nil event")
)

// PolicyAction is what a Transform does with an event whose program run failed.
type PolicyAction int

const (
	// PolicyAbort stops the whole batch and returns the error.
	PolicyAbort PolicyAction = iota
	// PolicyDrop discards the event.
	PolicyDrop
	// PolicyTag forwards the unmodified event with the error message stored
	// at metadata.remap_error.
	PolicyTag
	// PolicyPass is reported by Transform.Process when the run succeeded. It is
	// not a valid policy setting.
	PolicyPass
)

func (a PolicyAction) String() string {
	switch a {
	case PolicyAbort:
		return "abort"
	case PolicyDrop:
		return "drop"
	case PolicyTag:
		return "tag"
	case PolicyPass:
		return "pass"
	}
	return fmt.Sprintf("PolicyAction(%d)", int(a))
}

func ParsePolicyAction(s string) (PolicyAction, error) {
	for _, a := range []PolicyAction{PolicyAbort, PolicyDrop, PolicyTag} {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	return PolicyAbort, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// ErrorPolicy picks an action per error kind, falling back to Default.
type ErrorPolicy struct {
	Default PolicyAction
	ByKind  map[decl.ErrorKind]PolicyAction
}

// For returns the action to take for err. Errors that did not come out of an
// expression use the default action.
func (p ErrorPolicy) For(err error) PolicyAction {
	var exprErr *decl.Error
	if errors.As(err, &exprErr) {
		if action, ok := p.ByKind[exprErr.Kind]; ok {
			return action
		}
	}
	return p.Default
}

// String renders the policy in the form ParseErrorPolicy accepts.
func (p ErrorPolicy) String() string {
	parts := []string{p.Default.String()}
	kinds := make([]decl.ErrorKind, 0, len(p.ByKind))
	for k := range p.ByKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		parts = append(parts, k.String()+"="+p.ByKind[k].String())
	}
	return strings.Join(parts, ",")
}

// ParseErrorPolicy reads a comma separated policy such as "tag,variable=drop".
// A bare action sets the default; kind=action pairs override single kinds.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	policy := ErrorPolicy{Default: PolicyAbort}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kindName, actionName, scoped := strings.Cut(part, "=")
		if !scoped {
			action, err := ParsePolicyAction(part)
			if err != nil {
				return policy, err
			}
			policy.Default = action
			continue
		}
		kind, err := decl.ParseErrorKind(strings.TrimSpace(kindName))
		if err != nil {
			return policy, fmt.Errorf("%w: %v", ErrUnknownPolicy, err)
		}
		action, err := ParsePolicyAction(strings.TrimSpace(actionName))
		if err != nil {
			return policy, err
		}
		if policy.ByKind == nil {
			policy.ByKind = map[decl.ErrorKind]PolicyAction{}
		}
		policy.ByKind[kind] = action
	}
	return policy, nil
}
