package services

import (
	"context"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

// loadActor - пользователь, от имени которого выполняется запрос.
func loadActor(ctx context.Context, users repositories.UserRepositoryInterface) (*entities.User, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	actor, err := users.FindUser(ctx, userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if actor.IsBlocked() {
		return nil, apperrors.ErrUserBlocked
	}
	return actor, nil
}

func ToUserResponse(u *entities.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Username:           u.Username,
		DisplayName:        u.DisplayName(),
		LanguageCode:       u.LanguageCode,
		IsPremium:          u.IsPremium,
		PhotoURL:           u.PhotoURL,
		Role:               u.Role,
		Status:             u.Status,
		RegistrationStatus: u.RegistrationStatus,
		OrganizationName:   u.OrganizationName,
		Orders:             u.Orders,
		OwnedServices:      nonNil(u.OwnedServices),
		EmployeeServices:   nonNil(u.EmployeeServices),
		ActiveServiceID:    u.ActiveServiceID,
		LastSeen:           u.LastSeen,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func toShortUser(u *entities.User) *dto.ShortUserDTO {
	if u == nil {
		return nil
	}
	return &dto.ShortUserDTO{ID: u.ID, DisplayName: u.DisplayName(), Username: u.Username, PhotoURL: u.PhotoURL}
}

func toEmployeeResponse(e entities.ServiceEmployee, u *entities.User) dto.EmployeeResponseDTO {
	perms := e.Permissions
	if perms == nil {
		perms = []string{}
	}
	return dto.EmployeeResponseDTO{
		ID:          e.ID,
		ServiceID:   e.ServiceID,
		UserID:      e.UserID,
		Role:        e.Role,
		Permissions: perms,
		Status:      e.Status,
		InvitedBy:   e.InvitedBy,
		JoinedAt:    e.JoinedAt,
		User:        toShortUser(u),
	}
}

func nonNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}
