package telemetry

// Event names. Properties carry counts and outcomes only, never task names
// or descriptions.
const (
	EventCommandExecuted    = "command_executed"
	EventProjectCreated     = "project_created"
	EventTaskCreated        = "task_created"
	EventTaskTransitioned   = "task_transitioned"
	EventTaskDeleted        = "task_deleted"
	EventRoadmapSynthesized = "roadmap_synthesized"
	EventOperationFailed    = "operation_failed"
)
