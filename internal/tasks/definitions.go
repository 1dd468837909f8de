package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	// Register general tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Register receipt tasks
	RegisterHandler(SendReceiptTask.TaskID(), SendReceiptTask.HandleExecution)

	// Register maintenance tasks
	RegisterHandler(ReconcileMembershipStatusTask.TaskID(), ReconcileMembershipStatusTask.HandleExecution)

	// Register backfill and cascade tasks
	RegisterHandler(BackfillPaymentsTask.TaskID(), BackfillPaymentsTask.HandleExecution)
	RegisterHandler(BackfillSnapshotsTask.TaskID(), BackfillSnapshotsTask.HandleExecution)
	RegisterHandler(ResumeCascadeTask.TaskID(), ResumeCascadeTask.HandleExecution)
}
