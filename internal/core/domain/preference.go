package domain

// ChatPreference holds per-chat UX state. Nil fields mean "not set" and
// fall back to process-wide defaults; the pipeline and verbosity write
// paths upsert the same row independently.
type ChatPreference struct {
	ChatID   int64
	Pipeline *string
	Verbose  *bool
}
