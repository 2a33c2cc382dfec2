package leaderboard

// Notifier forwards leaderboard events to an external host. Calls must
// not block the caller's frame loop.
type Notifier interface {
	// NotifyRegister announces a newly claimed name.
	NotifyRegister(name string)
	// NotifyTime reports a best time for name. Withdraw removes the name.
	NotifyTime(name string, t float64)
}

// NopNotifier drops every event. Used when no host is configured.
type NopNotifier struct{}

// NotifyRegister does nothing.
func (NopNotifier) NotifyRegister(string) {}

// NotifyTime does nothing.
func (NopNotifier) NotifyTime(string, float64) {}
