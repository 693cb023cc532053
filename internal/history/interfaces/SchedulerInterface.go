package interfaces

// SchedulerInterface runs the history maintenance jobs around the poller
// lifecycle: Restore before polling starts, Persist after it stopped.
type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}
