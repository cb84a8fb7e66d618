package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong or
// suspicious about it. Errors block saving; warnings don't.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.RuleStore.BaseURL = strings.TrimRight(strings.TrimSpace(out.RuleStore.BaseURL), "/")
	out.RuleStore.Team = strings.TrimSpace(out.RuleStore.Team)
	out.Notify.To = trimList(out.Notify.To)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.RuleStore.Enabled {
		if out.RuleStore.BaseURL == "" {
			res.addErr("rule_store.base_url is required when rule_store.enabled=true")
		}
		if out.RuleStore.Team == "" {
			res.addErr("rule_store.team is required when rule_store.enabled=true")
		}
		if out.RuleStore.RefreshSeconds <= 0 {
			res.addErr("rule_store.refresh_seconds must be > 0")
		} else if out.RuleStore.RefreshSeconds < 60 {
			res.addWarn("rule_store.refresh_seconds is very low (%d) and may hammer the rule store.", out.RuleStore.RefreshSeconds)
		}
	}

	if out.Scan.QuietMS <= 0 {
		res.addErr("scan.quiet_ms must be > 0")
	}
	if out.Scan.MaxWaitMS <= 0 {
		res.addErr("scan.max_wait_ms must be > 0")
	}
	if out.Scan.QuietMS > 0 && out.Scan.MaxWaitMS > 0 && out.Scan.MaxWaitMS < out.Scan.QuietMS {
		res.addErr("scan.max_wait_ms must be >= scan.quiet_ms")
	}
	if out.Scan.URLPollMS <= 0 {
		res.addErr("scan.url_poll_ms must be > 0")
	}
	if out.Scan.MinCardChars <= 0 {
		res.addErr("scan.min_card_chars must be > 0")
	}
	if out.Scan.StalenessSeconds <= 0 {
		res.addErr("scan.staleness_seconds must be > 0")
	} else if out.Scan.StalenessSeconds < 5 {
		res.addWarn("scan.staleness_seconds below 5 will retire slow-rendering cards too eagerly.")
	}
	if out.Scan.SafetySeconds <= 0 {
		res.addErr("scan.safety_seconds must be > 0")
	}

	if out.Notify.Enabled {
		if strings.TrimSpace(out.Notify.SMTPHost) == "" {
			res.addErr("notify.smtp_host is required when notify.enabled=true")
		}
		if out.Notify.SMTPPort == 0 {
			res.addErr("notify.smtp_port is required when notify.enabled=true")
		}
		if strings.TrimSpace(out.Notify.From) == "" {
			res.addErr("notify.from is required when notify.enabled=true")
		}
		if len(out.Notify.To) == 0 {
			res.addWarn("notify.to is empty; red advisories will not reach anyone.")
		}
	}

	return out, res
}
