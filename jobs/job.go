package jobs

// Job is one run of a periodic task. Scheduling belongs to whoever runs it.
type Job interface {
	Process()
}
