package rulelint

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Lint directories of AI assistant rule documents"
	MsgRunShort        = "Evaluate the rules against files"
	MsgCheckShort      = "Validate the rule documents"
	MsgListShort       = "List the loaded rules in dispatch order"
	MsgListLong        = "List loads the rules directory and shows every valid rule in the order rules are applied."
	MsgDescribeShort   = "Show a rule with its documentation"
	MsgDescribeLong    = "Describe renders the markdown of a rule document followed by its filters, actions and examples."
	MsgFmtShort        = "Rewrite rule documents in canonical form"
	MsgWatchShort      = "Rerun on every change"
	MsgConfigShort     = "Inspect or create configuration"
	MsgConfigInitShort = "Write a commented default config file"
	MsgConfigShowShort = "Print the merged configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgRulesLoaded      = "%d %s loaded from %s"
	MsgNoRules          = "No rules loaded."
	MsgFmtWouldChange   = "would reformat %s\n"
	MsgFmtWritten       = "formatted %s\n"
	MsgFmtClean         = "%d documents already in canonical form\n"
	MsgConfigWritten    = "Wrote %s\n"
	MsgWatchRerun       = "\n%d changed, rerunning\n"
	MsgVersionFormat    = "rulelint version %s\n  commit: %s\n  built:  %s\n"
	MsgLoadErrorsHeader = "rule documents rejected:"
	MsgWarningsHeader   = "warnings:"

	// Error messages
	MsgErrLoadConfig   = "failed to load configuration: %w"
	MsgErrRun          = "failed to run: %w"
	MsgErrRender       = "failed to render report: %w"
	MsgErrUnknownRule  = "no rule named %q"
	MsgErrConfigExists = "%s already exists, use --force to overwrite"
	MsgErrMetrics      = "failed to write metrics: %w"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Config file to load after the user and project configs"
	MsgFlagRules       = "Rules directory (overrides rules.dir)"
	MsgFlagNoColor     = "Disable colored output"
	MsgFlagEvent       = "Event name attached to every target"
	MsgFlagFormat      = "Report format: auto, text, terminal, json or checkstyle"
	MsgFlagWorkers     = "Concurrent target workers (0 = one per CPU)"
	MsgFlagMetricsFile = "Write Prometheus textfile metrics to this path"
	MsgFlagWrite       = "Write the canonical form back to the files"
	MsgFlagForce       = "Overwrite an existing config file"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/run-example.txt
	msgRunExampleRaw string
	MsgRunExample    = strings.TrimRight(msgRunExampleRaw, "\n")

	//go:embed msgs/check-long.txt
	msgCheckLongRaw string
	MsgCheckLong    = strings.TrimSpace(msgCheckLongRaw)

	//go:embed msgs/fmt-long.txt
	msgFmtLongRaw string
	MsgFmtLong    = strings.TrimSpace(msgFmtLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
