package schedule

// RunNow invokes the job as a cron tick would.
func (s *Scheduler) RunNow() { s.run() }
