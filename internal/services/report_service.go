// Файл: internal/services/report_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pedant-server/internal/authz"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

const ordersSheet = "Заказ-наряды"

var orderReportHeaders = []interface{}{
	"ID", "Номер", "Статус", "Автор", "Комментарий", "Фото", "Создан", "Изменён",
}

type ReportServiceInterface interface {
	// ExportServiceOrders собирает xlsx со всеми заказами сервиса.
	ExportServiceOrders(ctx context.Context, serviceID uint64) (*bytes.Buffer, string, error)
}

type reportService struct {
	orderRepo    repositories.OrderRepositoryInterface
	serviceRepo  repositories.ServiceRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	clock        utils.Clock
	logger       *zap.Logger
}

func NewReportService(
	orderRepo repositories.OrderRepositoryInterface,
	serviceRepo repositories.ServiceRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	clock utils.Clock,
	logger *zap.Logger,
) ReportServiceInterface {
	return &reportService{
		orderRepo:    orderRepo,
		serviceRepo:  serviceRepo,
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		clock:        clock,
		logger:       logger,
	}
}

func (s *reportService) ExportServiceOrders(ctx context.Context, serviceID uint64) (*bytes.Buffer, string, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, "", err
	}
	service, err := s.serviceRepo.FindService(ctx, serviceID)
	if err != nil {
		return nil, "", err
	}
	if !actor.IsAdmin() {
		employment, err := s.employeeRepo.FindActive(ctx, actor.ID, serviceID)
		if err != nil {
			return nil, "", err
		}
		if !authz.Allows(employment, authz.ViewOrders) {
			return nil, "", apperrors.NewForbiddenError("Нет права просматривать заказы сервиса")
		}
	}

	orders, err := s.orderRepo.GetByService(ctx, serviceID)
	if err != nil {
		return nil, "", err
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })

	buf, err := buildOrdersWorkbook(orders)
	if err != nil {
		s.logger.Error("Не удалось сформировать отчёт", zap.Uint64("serviceID", serviceID), zap.Error(err))
		return nil, "", err
	}

	fileName := fmt.Sprintf("orders_%s_%s.xlsx", service.ServiceNumber, s.clock().Format("2006-01-02"))
	s.logger.Info("Сформирован отчёт по заказам",
		zap.Uint64("serviceID", serviceID),
		zap.Int("orders", len(orders)),
		zap.Uint64("actorID", actor.ID),
	)
	return buf, fileName, nil
}

func buildOrdersWorkbook(orders []entities.Order) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderReportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ordersSheet, "A1", "H1", style); err != nil {
		return nil, err
	}

	const dateFmt = "02.01.2006 15:04"
	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			o.ID, o.OrderNumber, o.Status, o.CreatedBy, o.Comment, o.PhotosCount,
			o.CreatedAt.Format(dateFmt), o.UpdatedAt.Format(dateFmt),
		}
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(ordersSheet, "B", "B", 16)
	_ = f.SetColWidth(ordersSheet, "D", "D", 25)
	_ = f.SetColWidth(ordersSheet, "E", "E", 50)
	_ = f.SetColWidth(ordersSheet, "G", "H", 18)

	return f.WriteToBuffer()
}
