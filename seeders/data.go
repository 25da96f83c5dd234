package seeders

import "pedant-server/internal/dto"

var demoServices = []dto.CreateServiceDTO{
	{ServiceNumber: "001", Name: "Центральный сервис", Address: "ул. Ленина, 1"},
	{ServiceNumber: "002", Name: "Сервис на Садовой", Address: "ул. Садовая, 15"},
}
