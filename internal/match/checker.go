package match

import (
	"log"
	"time"

	"sourcing-advisor/internal/domain"
	"sourcing-advisor/internal/rules"
)

// Renderer is the advisory banner/badge collaborator. Calls are
// fire-and-forget; the core relies on no return value.
type Renderer interface {
	Show(result rules.MatchResult)
	Badge(cardID string, severity rules.Severity)
	Dismiss()
	Destroy()
}

// StatusReporter receives a status push after each pass (popup/badge icon).
type StatusReporter interface {
	Push(st domain.ScanStatus)
}

// Source supplies the current rule lists. Implementations hand out read-only
// snapshots; the matcher never mutates rule records.
type Source interface {
	ActiveLocationRules() []rules.Rule
	ActiveCompanyRules() []rules.Rule
}

// Checker is the side-effecting entry point: evaluate a candidate, render the
// advisory, push the status. Collaborator failures are logged and swallowed;
// the next natural scheduling trigger is the only retry.
type Checker struct {
	Rules    Source
	Renderer Renderer
	Status   StatusReporter
	Now      func() time.Time // defaults to time.Now
}

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Check evaluates the candidate and notifies collaborators. A candidate with
// both fields empty is never matched; it is reported as the distinct
// unable-to-read outcome instead of a false "clear".
func (c *Checker) Check(cand domain.Candidate) rules.MatchResult {
	if cand.Failed() {
		c.push(domain.ScanStatus{Status: domain.ScanNoData, Message: "Unable to read profile"})
		return rules.Clear()
	}

	res := Evaluate(cand, c.Rules.ActiveLocationRules(), c.Rules.ActiveCompanyRules(), c.now())

	c.show(res)
	c.push(domain.ScanStatus{
		Status:   domain.ScanSuccess,
		Location: cand.Location,
		Company:  cand.Company,
		Severity: string(res.Severity),
		Message:  res.Message,
	})
	return res
}

func (c *Checker) show(res rules.MatchResult) {
	if c.Renderer == nil {
		return
	}
	defer logPanic("renderer")
	c.Renderer.Show(res)
}

func (c *Checker) push(st domain.ScanStatus) {
	if c.Status == nil {
		return
	}
	defer logPanic("status reporter")
	c.Status.Push(st)
}

// logPanic keeps a misbehaving collaborator from taking down a scan pass.
func logPanic(who string) {
	if r := recover(); r != nil {
		log.Printf("[match] %s failed: %v", who, r)
	}
}
