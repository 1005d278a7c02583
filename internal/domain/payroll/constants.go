package payroll

const (
	TimesheetStatusDraft     = "draft"
	TimesheetStatusSubmitted = "submitted"
	TimesheetStatusApproved  = "approved"
	TimesheetStatusPaid      = "paid"
	TimesheetStatusRejected  = "rejected"
)
