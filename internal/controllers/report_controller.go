package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/services"
	"pedant-server/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

// ExportServiceOrders отдаёт xlsx со всеми заказами сервиса.
func (c *ReportController) ExportServiceOrders(ctx echo.Context) error {
	serviceID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	reqCtx, cancel := utils.ContextWithTimeout(ctx, 60)
	defer cancel()

	buf, filename, err := c.reportService.ExportServiceOrders(reqCtx, serviceID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Выгрузка заказов сформирована", zap.Uint64("serviceID", serviceID), zap.Int("bytes", buf.Len()))
	return respondWithXLSX(ctx, buf, filename)
}

func respondWithXLSX(ctx echo.Context, buf *bytes.Buffer, filename string) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
