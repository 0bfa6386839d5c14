package cpm

// Schedule holds the complete critical path analysis of a project.
type Schedule struct {
	Tasks        []TaskSchedule `json:"tasks"`        // topological order
	CriticalPath []string       `json:"criticalPath"` // ordered task IDs with zero slack
	TotalHours   float64        `json:"totalHours"`
	Waves        []Wave         `json:"waves"`
}

// TaskSchedule holds the scheduling info for a single task, in hours from
// project start.
type TaskSchedule struct {
	TaskID   string  `json:"taskId"`
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
	ES       float64 `json:"earliestStart"`
	EF       float64 `json:"earliestFinish"`
	LS       float64 `json:"latestStart"`
	LF       float64 `json:"latestFinish"`
	Slack    float64 `json:"slack"`
	Critical bool    `json:"critical"`
	Wave     int     `json:"wave"`
}

// Wave is a group of tasks that share an earliest start and can run in parallel.
type Wave struct {
	Index    int      `json:"index"`
	Start    float64  `json:"start"`
	TaskIDs  []string `json:"taskIds"`
	Critical bool     `json:"critical"`
}

// Get returns the schedule entry for id.
func (s *Schedule) Get(id string) (TaskSchedule, bool) {
	for _, ts := range s.Tasks {
		if ts.TaskID == id {
			return ts, true
		}
	}
	return TaskSchedule{}, false
}
