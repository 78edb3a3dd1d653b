package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// Case runs one scenario in a fresh session of one browser
type Case struct {
	group    string
	kind     Kind
	scenario Scenario
	fixture  *Fixture
}

var _ domain.TestCase = (*Case)(nil)

// Name returns "<scenario> (<group>)"
func (c *Case) Name() string {
	return fmt.Sprintf("%s (%s)", c.scenario.Name, c.group)
}

// Run sets up a session, runs the scenario and tears the session down.
// Assertion errors become failures; anything else is reported as an error.
// The session is quit even when the scenario panics; the panic is passed on.
func (c *Case) Run(ctx context.Context) (res domain.Result) {
	name := c.Name()
	sess, err := c.fixture.Setup(ctx, c.kind, name)
	if err != nil {
		return domain.Result{Err: err}
	}

	defer func() {
		p := recover()
		failures, err := c.fixture.Teardown(ctx, name, sess)
		res.Failures = append(res.Failures, failures...)
		if err != nil {
			res.Err = errors.Join(res.Err, err)
		}
		if p != nil {
			panic(p)
		}
	}()

	b := c.fixture.browser(sess)
	if err := c.scenario.Run(ctx, b); err != nil {
		var assertion *AssertionError
		if errors.As(err, &assertion) {
			res.Failures = append(res.Failures, err.Error())
		} else {
			res.Err = err
		}
	}
	return res
}

// NewGroup creates the group of every scenario for kind. A non-empty suffix
// is appended to the group name to keep repeated groups apart.
func NewGroup(kind Kind, fixture *Fixture, suffix string) domain.TestGroup {
	name := kind.GroupName() + suffix
	scenarios := Scenarios(kind)
	cases := make([]domain.TestCase, 0, len(scenarios))
	for _, s := range scenarios {
		cases = append(cases, &Case{group: name, kind: kind, scenario: s, fixture: fixture})
	}
	return domain.Group{GroupName: name, Members: cases}
}
