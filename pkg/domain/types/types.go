package types

// Version is the application version, overridden at build time via ldflags.
var Version = "dev"

// Trigger identifies what caused a mirror run.
type Trigger string

const (
	// TriggerWebhook marks runs started by a GitHub push webhook.
	TriggerWebhook Trigger = "webhook"

	// TriggerManual marks runs started from the CLI.
	TriggerManual Trigger = "manual"
)
