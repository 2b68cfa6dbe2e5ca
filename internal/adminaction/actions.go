package adminaction

type ActionType string

const (
	ActionIssueBan       ActionType = "ISSUE_BAN"
	ActionLiftBan        ActionType = "LIFT_BAN"
	ActionLockSlot       ActionType = "LOCK_SLOT"
	ActionUnlockSlot     ActionType = "UNLOCK_SLOT"
	ActionImportStudents ActionType = "IMPORT_STUDENTS"
	ActionCreateStaff    ActionType = "CREATE_STAFF"
)
