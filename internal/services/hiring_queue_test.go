package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedant-server/internal/authz"
	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

func TestAddCandidateToGeneralQueue(t *testing.T) {
	f := newFixture(t)
	f.user(7, "Анна")

	entry, err := f.hiring.AddCandidateToGeneralQueue(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusWaitingForHire, entry.Status)
	assert.Nil(t, entry.EmployerUserID)
	assert.Equal(t, baseTime.Add(24*time.Hour), entry.ExpiresAt)
	require.NotNil(t, entry.QRData)
	assert.Equal(t, "Анна", entry.QRData.FirstName)
	assert.Equal(t, entities.RegistrationWaitingForHire, f.reload(7).RegistrationStatus)

	unknown, err := f.hiring.AddCandidateToGeneralQueue(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, unknown.QRData)
}

func TestAddToQueue(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")

	entry, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7, ServiceID: &svc.ID})
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusPending, entry.Status)
	assert.Equal(t, authz.RoleEmployee, entry.Role)
	require.NotNil(t, entry.EmployerUserID)
	assert.Equal(t, uint64(1), *entry.EmployerUserID)

	again, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7, ServiceID: &svc.ID})
	require.NoError(t, err)
	assert.Equal(t, entry.ID, again.ID)

	_, err = f.hiring.AddToQueue(context.Background(), 7, dto.AddToQueueDTO{CandidateUserID: 7})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	f.user(2, "Чужой")
	_, err = f.hiring.AddToQueue(context.Background(), 2, dto.AddToQueueDTO{CandidateUserID: 7, ServiceID: &svc.ID})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestApprove_ExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	entry, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)

	// Ровно в момент expiresAt заявка ещё действует.
	f.now = entry.ExpiresAt
	approved, err := f.hiring.Approve(context.Background(), entry.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusApproved, approved.Status)
	require.NotNil(t, approved.ProcessedAt)
	assert.Equal(t, entry.ExpiresAt, *approved.ProcessedAt)
}

func TestApprove_Expired(t *testing.T) {
	f := newFixture(t)
	entry, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)

	f.now = entry.ExpiresAt.Add(time.Second)
	_, err = f.hiring.Approve(context.Background(), entry.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExpired))

	stored, err := f.queue.FindEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusPending, stored.Status)
}

func TestDecisionOrdering(t *testing.T) {
	f := newFixture(t)
	first, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)
	second, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 8})
	require.NoError(t, err)

	_, err = f.hiring.Reject(context.Background(), first.ID, 1)
	require.NoError(t, err)
	_, err = f.hiring.Approve(context.Background(), second.ID, 1)
	require.NoError(t, err)

	// Обработанная и просроченная заявка: одобрение видит срок, отклонение - статус.
	f.advance(48 * time.Hour)
	_, err = f.hiring.Approve(context.Background(), first.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExpired))
	_, err = f.hiring.Reject(context.Background(), second.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyProcessed))

	_, err = f.hiring.Approve(context.Background(), 404, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDecision_OtherEmployerForbidden(t *testing.T) {
	f := newFixture(t)
	entry, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)

	_, err = f.hiring.Reject(context.Background(), entry.ID, 2)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestApprove_Twice(t *testing.T) {
	f := newFixture(t)
	entry, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)

	_, err = f.hiring.Approve(context.Background(), entry.ID, 1)
	require.NoError(t, err)

	f.advance(time.Hour)
	_, err = f.hiring.Approve(context.Background(), entry.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyProcessed))
	_, err = f.hiring.Reject(context.Background(), entry.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyProcessed))
}

func TestReject_Twice(t *testing.T) {
	f := newFixture(t)
	entry, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)

	rejected, err := f.hiring.Reject(context.Background(), entry.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusRejected, rejected.Status)

	f.advance(time.Hour)
	_, err = f.hiring.Reject(context.Background(), entry.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyProcessed))
	_, err = f.hiring.Approve(context.Background(), entry.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyProcessed))

	stored, err := f.queue.FindEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusRejected, stored.Status)
}

func TestDecision_CandidateCannotDecideOwnEntry(t *testing.T) {
	f := newFixture(t)
	f.user(7, "Анна")
	entry, err := f.hiring.AddCandidateToGeneralQueue(context.Background(), 7)
	require.NoError(t, err)

	_, err = f.hiring.Approve(context.Background(), entry.ID, 7)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	_, err = f.hiring.Reject(context.Background(), entry.ID, 7)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	stored, err := f.queue.FindEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusWaitingForHire, stored.Status)
	assert.Nil(t, stored.EmployerUserID)
}

func TestAddToQueue_RejectsOwnerRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7, Role: authz.RoleOwner})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	_, err = f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7, Role: "boss"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestApprove_GeneralQueueClaimsEntry(t *testing.T) {
	f := newFixture(t)
	entry, err := f.hiring.AddCandidateToGeneralQueue(context.Background(), 7)
	require.NoError(t, err)

	approved, err := f.hiring.Approve(context.Background(), entry.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, approved.EmployerUserID)
	assert.Equal(t, uint64(3), *approved.EmployerUserID)

	activities, err := f.activities.GetByUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, entities.ActivityApproved, activities[0].ActivityType)
}

func TestGetEmployerQueue_FilterAndOrder(t *testing.T) {
	f := newFixture(t)
	general, err := f.hiring.AddCandidateToGeneralQueue(context.Background(), 5)
	require.NoError(t, err)
	f.advance(time.Minute)
	mine, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 6})
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.hiring.AddToQueue(context.Background(), 2, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)

	queue, err := f.hiring.GetEmployerQueue(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, mine.ID, queue[0].ID)
	assert.Equal(t, general.ID, queue[1].ID)

	// Заявка из общей очереди, одобренная другим работодателем, из очереди пропадает.
	_, err = f.hiring.Approve(context.Background(), general.ID, 2)
	require.NoError(t, err)
	queue, err = f.hiring.GetEmployerQueue(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	f.advance(25 * time.Hour)
	queue, err = f.hiring.GetEmployerQueue(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestGetQueueStats(t *testing.T) {
	f := newFixture(t)
	_, err := f.hiring.AddCandidateToGeneralQueue(context.Background(), 5)
	require.NoError(t, err)
	a, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 6})
	require.NoError(t, err)
	b, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)
	_, err = f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 8})
	require.NoError(t, err)

	_, err = f.hiring.Approve(context.Background(), a.ID, 1)
	require.NoError(t, err)
	_, err = f.hiring.Reject(context.Background(), b.ID, 1)
	require.NoError(t, err)

	stats, err := f.hiring.GetQueueStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, dto.QueueStatsDTO{Total: 4, Pending: 2, Approved: 1, Rejected: 1}, *stats)
}

func TestGetCandidateApplications(t *testing.T) {
	f := newFixture(t)
	first, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)
	f.advance(time.Hour)
	second, err := f.hiring.AddToQueue(context.Background(), 2, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)
	_, err = f.hiring.AddToQueue(context.Background(), 2, dto.AddToQueueDTO{CandidateUserID: 8})
	require.NoError(t, err)

	apps, err := f.hiring.GetCandidateApplications(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, second.ID, apps[0].ID)
	assert.Equal(t, first.ID, apps[1].ID)
}

func TestApproveAndHire(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")

	entry, err := f.hiring.AddCandidateToGeneralQueue(context.Background(), 7)
	require.NoError(t, err)

	approved, employment, err := f.hiring.ApproveAndHire(context.Background(), entry.ID, 1, svc.ID)
	require.NoError(t, err)
	f.bus.Wait()
	assert.Equal(t, entities.HiringStatusApproved, approved.Status)
	require.NotNil(t, approved.ServiceID)
	assert.Equal(t, svc.ID, *approved.ServiceID)
	assert.Equal(t, authz.HirePermissions(), employment.Permissions)

	candidate := f.reload(7)
	assert.Equal(t, entities.RegistrationEmployee, candidate.RegistrationStatus)
	assert.Equal(t, []uint64{svc.ID}, candidate.EmployeeServices)
	assert.Equal(t, utils.ToPtr(svc.ID), candidate.ActiveServiceID)
}

func TestApproveAndHire_GrantsQueuedRole(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")

	entry, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7, ServiceID: &svc.ID, Role: authz.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, authz.RoleManager, entry.Role)

	_, employment, err := f.hiring.ApproveAndHire(context.Background(), entry.ID, 1, svc.ID)
	require.NoError(t, err)
	f.bus.Wait()
	assert.Equal(t, authz.RoleManager, employment.Role)
	assert.Equal(t, authz.HirePermissionsFor(authz.RoleManager), employment.Permissions)

	stored, err := f.employees.FindActive(context.Background(), 7, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, authz.RoleManager, stored.Role)
}

func TestApproveAndHire_RollsBackWhenHireFails(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(2, "Не владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")

	entry, err := f.hiring.AddCandidateToGeneralQueue(context.Background(), 7)
	require.NoError(t, err)

	_, _, err = f.hiring.ApproveAndHire(context.Background(), entry.ID, 2, svc.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotServiceOwner)

	stored, err := f.queue.FindEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusWaitingForHire, stored.Status)
	assert.Nil(t, stored.EmployerUserID)

	employments, err := f.employees.GetByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, employments)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	open, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 7})
	require.NoError(t, err)
	done, err := f.hiring.AddToQueue(context.Background(), 1, dto.AddToQueueDTO{CandidateUserID: 8})
	require.NoError(t, err)
	_, err = f.hiring.Reject(context.Background(), done.ID, 1)
	require.NoError(t, err)

	swept, err := f.hiring.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept)

	f.advance(25 * time.Hour)
	swept, err = f.hiring.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	stored, err := f.queue.FindEntry(context.Background(), open.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.HiringStatusExpired, stored.Status)

	_, err = f.hiring.Approve(context.Background(), open.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExpired))
}
