package events

import "pedant-server/internal/entities"

const (
	HiringQueuedEvent   = "hiring.queued"
	HiringApprovedEvent = "hiring.approved"
	HiringRejectedEvent = "hiring.rejected"
	EmployeeHiredEvent  = "employee.hired"
)

// HiringQueued - кандидат встал в очередь (общую или к работодателю).
type HiringQueued struct {
	Entry entities.HiringQueue
}

func (e HiringQueued) Name() string { return HiringQueuedEvent }

// HiringDecided - заявка одобрена или отклонена работодателем.
type HiringDecided struct {
	Entry    entities.HiringQueue
	Approved bool
}

func (e HiringDecided) Name() string {
	if e.Approved {
		return HiringApprovedEvent
	}
	return HiringRejectedEvent
}

// EmployeeHired - создана или восстановлена запись о трудоустройстве.
type EmployeeHired struct {
	Employment entities.ServiceEmployee
	Service    entities.Service
	OwnerID    uint64
}

func (e EmployeeHired) Name() string { return EmployeeHiredEvent }
