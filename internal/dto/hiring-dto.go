package dto

type AddToQueueDTO struct {
	CandidateUserID uint64  `json:"candidateUserId" validate:"required"`
	ServiceID       *uint64 `json:"serviceId"`
	Role            string  `json:"role" validate:"omitempty,oneof=manager employee"`
}

// HiringDecisionDTO: без employerUserId решение принимает автор запроса.
type HiringDecisionDTO struct {
	EmployerUserID *uint64 `json:"employerUserId"`
}

type ApproveAndHireDTO struct {
	EmployerUserID *uint64 `json:"employerUserId"`
	ServiceID      uint64  `json:"serviceId" validate:"required"`
}

type QueueStatsDTO struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
