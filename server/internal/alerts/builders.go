package alerts

import (
	"fmt"

	"github.com/obsidianstack/alertbridge/pkg/types"
)

// Placeholders used when a payload omits a field.
const (
	unknownRule     = "Unknown alert"
	unknownResource = "Unknown resource"
	defaultSignal   = "Metric"
	defaultMonitor  = "Fired"

	unknownRepo     = "unknown-repo"
	unknownWorkflow = "unknown-workflow"
	unknownBranch   = "unknown-branch"
)

// pipelineSeverity is applied to every pipeline failure, one tier below
// critical.
const pipelineSeverity = types.SevWarning

// BuildAzureMonitor maps the essentials block of an Azure Monitor alert.
//
// The cooldown key is rule plus severity: the same rule firing on several
// resources shares one bucket.
func BuildAzureMonitor(payload any) types.Alert {
	ess := object(object(object(payload)["data"])["essentials"])

	rule := str(ess, "alertRule", unknownRule)
	sev := types.Severity(str(ess, "severity", string(types.SevVerbose)))
	signal := str(ess, "signalType", defaultSignal)
	monitor := str(ess, "monitorCondition", defaultMonitor)
	target := firstStr(ess, "alertTargetIDs", unknownResource)
	link := str(ess, "portalLink", "")

	text := fmt.Sprintf("[AZURE MONITOR] %s — %s\n"+
		"Severity: %s | Signal: %s\n"+
		"Resource: %s\n"+
		"%s",
		monitor, rule, sev, signal, target, link)

	return types.Alert{
		Source:   types.SourceAzureMonitor,
		Text:     text,
		Severity: sev,
		Key:      fmt.Sprintf("%s::%s::%s", types.SourceAzureMonitor, rule, sev),
	}
}

// BuildGitHubActions maps a pipeline-failure notification posted by a CI
// workflow. Severity does not depend on the payload.
func BuildGitHubActions(payload any) types.Alert {
	root := object(payload)

	repo := str(root, "repository", unknownRepo)
	workflow := str(root, "workflow", unknownWorkflow)
	branch := str(root, "branch", unknownBranch)
	url := str(root, "url", "")

	text := fmt.Sprintf("[GITHUB ACTIONS] Pipeline failed\n"+
		"Repository: %s\n"+
		"Workflow: %s\n"+
		"Branch: %s\n"+
		"%s",
		repo, workflow, branch, url)

	return types.Alert{
		Source:   types.SourceGitHubActions,
		Text:     text,
		Severity: pipelineSeverity,
		Key:      fmt.Sprintf("%s::%s::%s::%s", types.SourceGitHubActions, repo, workflow, branch),
	}
}
